package game

// AttackStyle is a melee stance a weapon allows.
type AttackStyle string

const (
	StylePunch AttackStyle = "PUNCH"
	StyleKick  AttackStyle = "KICK"
	StyleStab  AttackStyle = "STAB"
	StyleSlash AttackStyle = "SLASH"
	StyleBlock AttackStyle = "BLOCK"
)

// Weapon is the damage hook for wielded items. There is no inventory yet,
// so actors fight unarmed unless a weapon is assigned directly.
type Weapon struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	ExamineText  string        `json:"examineText"`
	AttackValue  int           `json:"attackValue"`
	AttackStyles []AttackStyle `json:"attackStyles"`
}

// Weapons known to the server, keyed by id.
var Weapons = map[string]Weapon{
	"bronze_dagger": {
		ID:           "bronze_dagger",
		Name:         "Bronze dagger",
		ExamineText:  "Short but pointy.",
		AttackValue:  2,
		AttackStyles: []AttackStyle{StyleStab, StyleSlash, StyleBlock},
	},
	"wooden_club": {
		ID:           "wooden_club",
		Name:         "Wooden club",
		ExamineText:  "A heavy lump of wood.",
		AttackValue:  3,
		AttackStyles: []AttackStyle{StylePunch, StyleBlock},
	},
}

// GetWeapon returns a weapon by id, or nil when the id is unknown.
func GetWeapon(id string) *Weapon {
	w, ok := Weapons[id]
	if !ok {
		return nil
	}
	return &w
}
