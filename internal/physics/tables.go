package physics

import (
	"fmt"
	"sort"
	"strings"

	"artillery-sim/internal/interp"
)

// Standard atmosphere and projectile tables. They are built once at package
// initialisation and never modified; interp.Table has no mutators.
var (
	// altitude (m) -> gravity (m/s²), magnitude only.
	gravityTable = interp.MustTable(
		interp.Sample{X: 0, Y: 9.807},
		interp.Sample{X: 1000, Y: 9.804},
		interp.Sample{X: 2000, Y: 9.801},
		interp.Sample{X: 3000, Y: 9.797},
		interp.Sample{X: 4000, Y: 9.794},
		interp.Sample{X: 5000, Y: 9.791},
		interp.Sample{X: 6000, Y: 9.788},
		interp.Sample{X: 7000, Y: 9.785},
		interp.Sample{X: 8000, Y: 9.782},
		interp.Sample{X: 9000, Y: 9.779},
		interp.Sample{X: 10000, Y: 9.776},
		interp.Sample{X: 15000, Y: 9.761},
		interp.Sample{X: 20000, Y: 9.745},
		interp.Sample{X: 25000, Y: 9.730},
	)

	// altitude (m) -> air density (kg/m³).
	densityTable = interp.MustTable(
		interp.Sample{X: 0, Y: 1.2250000},
		interp.Sample{X: 1000, Y: 1.1120000},
		interp.Sample{X: 2000, Y: 1.0070000},
		interp.Sample{X: 3000, Y: 0.9093000},
		interp.Sample{X: 4000, Y: 0.8194000},
		interp.Sample{X: 5000, Y: 0.7364000},
		interp.Sample{X: 6000, Y: 0.6601000},
		interp.Sample{X: 7000, Y: 0.5900000},
		interp.Sample{X: 8000, Y: 0.5258000},
		interp.Sample{X: 9000, Y: 0.4671000},
		interp.Sample{X: 10000, Y: 0.4135000},
		interp.Sample{X: 15000, Y: 0.1948000},
		interp.Sample{X: 20000, Y: 0.0889100},
		interp.Sample{X: 25000, Y: 0.0400800},
		interp.Sample{X: 30000, Y: 0.0184100},
		interp.Sample{X: 40000, Y: 0.0039960},
		interp.Sample{X: 50000, Y: 0.0010270},
		interp.Sample{X: 60000, Y: 0.0003097},
		interp.Sample{X: 70000, Y: 0.0000828},
		interp.Sample{X: 80000, Y: 0.0000185},
	)

	// altitude (m) -> speed of sound (m/s).
	speedOfSoundTable = interp.MustTable(
		interp.Sample{X: 0, Y: 340},
		interp.Sample{X: 1000, Y: 336},
		interp.Sample{X: 2000, Y: 332},
		interp.Sample{X: 3000, Y: 328},
		interp.Sample{X: 4000, Y: 324},
		interp.Sample{X: 5000, Y: 320},
		interp.Sample{X: 6000, Y: 316},
		interp.Sample{X: 7000, Y: 312},
		interp.Sample{X: 8000, Y: 308},
		interp.Sample{X: 9000, Y: 303},
		interp.Sample{X: 10000, Y: 299},
		interp.Sample{X: 15000, Y: 295},
		interp.Sample{X: 20000, Y: 295},
		interp.Sample{X: 25000, Y: 295},
		interp.Sample{X: 30000, Y: 305},
		interp.Sample{X: 40000, Y: 324},
	)

	// mach -> drag coefficient.
	dragCoefficientTable = interp.MustTable(
		interp.Sample{X: 0.300, Y: 0.1629},
		interp.Sample{X: 0.500, Y: 0.1659},
		interp.Sample{X: 0.700, Y: 0.2031},
		interp.Sample{X: 0.890, Y: 0.2597},
		interp.Sample{X: 0.920, Y: 0.3010},
		interp.Sample{X: 0.960, Y: 0.3287},
		interp.Sample{X: 0.980, Y: 0.4002},
		interp.Sample{X: 1.000, Y: 0.4258},
		interp.Sample{X: 1.020, Y: 0.4335},
		interp.Sample{X: 1.060, Y: 0.4483},
		interp.Sample{X: 1.240, Y: 0.4064},
		interp.Sample{X: 1.530, Y: 0.3663},
		interp.Sample{X: 1.990, Y: 0.2897},
		interp.Sample{X: 2.870, Y: 0.2297},
		interp.Sample{X: 2.890, Y: 0.2306},
		interp.Sample{X: 5.000, Y: 0.2656},
	)
)

var namedTables = map[string]interp.Table{
	"gravity":          gravityTable,
	"density":          densityTable,
	"speed_of_sound":   speedOfSoundTable,
	"drag_coefficient": dragCoefficientTable,
}

// TableNames lists the names accepted by TableByName, sorted.
func TableNames() []string {
	names := make([]string, 0, len(namedTables))
	for k := range namedTables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// TableByName returns one of the standard tables. The returned value is
// immutable and safe to share.
func TableByName(name string) (interp.Table, error) {
	t, ok := namedTables[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return interp.Table{}, fmt.Errorf("unknown table %q (want one of %s)", name, strings.Join(TableNames(), ", "))
	}
	return t, nil
}
