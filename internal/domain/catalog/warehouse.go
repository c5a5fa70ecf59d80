package catalog

// Warehouse identifiers used by the dashboard.
const (
	WarehouseCallao   = "callao"
	WarehouseMalvinas = "malvinas"
)

// Store names as registered on the inventory server. The status board always
// renders these five, in this order, regardless of what counts exist.
var Tiendas = []string{
	"TIENDA 3006",
	"TIENDA 3006 B",
	"TIENDA 3131",
	"TIENDA 3133",
	"TIENDA 412-A",
}

// IsKnownTienda reports whether name belongs to the fixed store directory.
func IsKnownTienda(name string) bool {
	for _, t := range Tiendas {
		if t == name {
			return true
		}
	}
	return false
}
