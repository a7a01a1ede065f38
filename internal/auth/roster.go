package auth

import "golang.org/x/crypto/bcrypt"

// Role gates access to the instructor and learner surfaces.
type Role string

const (
	RoleInstructor Role = "instructor"
	RoleLearner    Role = "learner"
)

// Account is a known identity. It never carries a credential; passwords live
// only as bcrypt hashes inside the roster.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Seed is a roster entry with its login password, consumed at construction.
type Seed struct {
	ID       string
	Username string
	Password string
	Role     Role
}

// DefaultSeeds is the fixed account set the application ships with.
func DefaultSeeds() []Seed {
	return []Seed{
		{ID: "1", Username: "prof", Password: "pass", Role: RoleInstructor},
		{ID: "2", Username: "stu1", Password: "pass1", Role: RoleLearner},
		{ID: "3", Username: "stu2", Password: "pass2", Role: RoleLearner},
		{ID: "4", Username: "stu3", Password: "pass3", Role: RoleLearner},
	}
}

type credential struct {
	account Account
	hash    []byte
}

// Roster is the fixed, in-memory credential store.
type Roster struct {
	byUsername map[string]credential
}

func NewRoster(seeds []Seed) (*Roster, error) {
	r := &Roster{byUsername: make(map[string]credential, len(seeds))}
	for _, s := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		r.byUsername[s.Username] = credential{
			account: Account{ID: s.ID, Username: s.Username, Role: s.Role},
			hash:    hash,
		}
	}
	return r, nil
}

// Verify checks a username/password pair and returns the matching account.
func (r *Roster) Verify(username, password string) (Account, bool) {
	cred, ok := r.byUsername[username]
	if !ok {
		return Account{}, false
	}
	if bcrypt.CompareHashAndPassword(cred.hash, []byte(password)) != nil {
		return Account{}, false
	}
	return cred.account, true
}
