package domain

import "errors"

// SettingOAuthProviders holds the list of enabled OAuth providers.
const SettingOAuthProviders = "oauth_providers"

var ErrProviderDisabled = errors.New("login provider is not enabled")
var ErrUnknownProvider = errors.New("unknown login provider")
