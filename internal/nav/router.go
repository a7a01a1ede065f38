package nav

import "github.com/quizforge/quizforge/internal/auth"

// View names the screens the application can land on.
type View string

const (
	ViewLogin      View = "login"
	ViewLanding    View = "landing"
	ViewInstructor View = "instructor"
	ViewLearner    View = "learner"
)

// Session is the identity surface routing decisions need.
type Session interface {
	IsAuthenticated() bool
	HasRole(auth.Role) bool
}

// Resolve is the single routing decision, evaluated on every navigation
// request:
//   - protected views demand authentication, else login;
//   - a role-guarded view the session lacks falls back to the landing view;
//   - the landing view fans out to the role's dashboard;
//   - an authenticated visit to login goes to landing (no duplicate login);
//   - anything unrecognized is caught by the landing view.
func Resolve(s Session, target View) View {
	switch target {
	case ViewLogin:
		if s.IsAuthenticated() {
			return ViewLanding
		}
		return ViewLogin
	case ViewInstructor:
		return resolveGuarded(s, ViewInstructor, auth.RoleInstructor)
	case ViewLearner:
		return resolveGuarded(s, ViewLearner, auth.RoleLearner)
	case ViewLanding:
		switch {
		case s.HasRole(auth.RoleInstructor):
			return ViewInstructor
		case s.HasRole(auth.RoleLearner):
			return ViewLearner
		default:
			return ViewLogin
		}
	default:
		return ViewLanding
	}
}

func resolveGuarded(s Session, target View, role auth.Role) View {
	if !s.IsAuthenticated() {
		return ViewLogin
	}
	if !s.HasRole(role) {
		return ViewLanding
	}
	return target
}

// Destination follows Resolve until it reaches a stable view, so callers get
// the final screen instead of an intermediate redirect.
func Destination(s Session, target View) View {
	for i := 0; i < 3; i++ {
		next := Resolve(s, target)
		if next == target {
			return next
		}
		target = next
	}
	return target
}
