package entity

// Roles del personal. La identidad la valida un proveedor externo; el núcleo solo confía en (userID, role).
const (
	RoleAdmin        = "admin"
	RoleDokter       = "dokter"
	RolePerawat      = "perawat"
	RoleApoteker     = "apoteker"
	RoleLaboratorium = "laboratorium"
	RoleResepsionis  = "resepsionis"
)

// IsValidRole indica si r es un rol conocido.
func IsValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleDokter, RolePerawat, RoleApoteker, RoleLaboratorium, RoleResepsionis:
		return true
	}
	return false
}
