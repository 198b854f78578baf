package domain

// Regions is the fixed enumeration of administrative regions a project may belong to.
var Regions = []string{
	"NCR",
	"CAR",
	"Region I",
	"Region II",
	"Region III",
	"Region IV-A",
	"MIMAROPA",
	"Region V",
	"Region VI",
	"NIR",
	"Region VII",
	"Region VIII",
	"Region IX",
	"Region X",
	"Region XI",
	"Region XII",
	"Region XIII",
	"BARMM",
}

var regionSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Regions))
	for _, r := range Regions {
		m[r] = struct{}{}
	}
	return m
}()

// IsRegion reports whether r is one of Regions.
func IsRegion(r string) bool {
	_, ok := regionSet[r]
	return ok
}
