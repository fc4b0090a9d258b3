package roster

import "math/rand"

type Role string

const (
	RoleFarmer      Role = "farmer"
	RoleBuilder     Role = "builder"
	RoleTrader      Role = "trader"
	RoleTeacher     Role = "teacher"
	RoleHealer      Role = "healer"
	RolePolice      Role = "police"
	RoleThief       Role = "thief"
	RoleBlackmailer Role = "blackmailer"
	RoleSaboteur    Role = "saboteur"
	RoleRingleader  Role = "ringleader"
	RoleNewborn     Role = "newborn"
)

type Status string

const (
	StatusAlive Status = "alive"
	StatusDead  Status = "dead"
)

// Citizen is the read-only per-agent snapshot the core operates on.
// The orchestrator owns the authoritative agent state; the justice
// pipeline only ever sees this view.
type Citizen struct {
	Name     string
	Role     Role
	Status   Status
	Distress float64 // scalar desperation, negative is worse
	Tokens   int
}

func (c Citizen) Alive() bool { return c.Status == StatusAlive }

// Criminal reports whether the role qualifies to start a concealment
// group.
func Criminal(r Role) bool {
	switch r {
	case RoleThief, RoleBlackmailer, RoleSaboteur, RoleRingleader:
		return true
	}
	return false
}

// Protected roles can never be recruited into a group.
func Protected(r Role) bool {
	switch r {
	case RolePolice, RoleHealer, RoleNewborn:
		return true
	}
	return false
}

func Find(cs []Citizen, name string) (Citizen, bool) {
	for _, c := range cs {
		if c.Name == name {
			return c, true
		}
	}
	return Citizen{}, false
}

func LivingByRole(cs []Citizen, role Role) []Citizen {
	var out []Citizen
	for _, c := range cs {
		if c.Alive() && c.Role == role {
			out = append(out, c)
		}
	}
	return out
}

var founderNames = []string{
	"Mara", "Oren", "Tessa", "Bram", "Ivo", "Sable", "Quill", "Nerys",
	"Dorn", "Liora", "Casper", "Wren", "Edda", "Tobin", "Hale", "Petra",
}

var founderRoles = []Role{
	RoleFarmer, RoleBuilder, RoleTrader, RoleTeacher,
	RoleHealer, RolePolice, RoleThief, RoleFarmer,
}

// Founders spawns the founding citizens for a fresh town. Roles cycle
// so that every town has at least one police officer and one thief.
func Founders(n int, rng *rand.Rand) []Citizen {
	if n < 1 {
		n = 1
	}
	if n > len(founderNames) {
		n = len(founderNames)
	}
	out := make([]Citizen, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Citizen{
			Name:     founderNames[i],
			Role:     founderRoles[i%len(founderRoles)],
			Status:   StatusAlive,
			Distress: -rng.Float64() * 0.5,
			Tokens:   100,
		})
	}
	return out
}
