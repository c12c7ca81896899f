package api

import (
	"net/http"

	"github.com/soaringjerry/mindscope/internal/middleware"
	"github.com/soaringjerry/mindscope/internal/services"
)

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := rt.auth.Register(in.Name, in.Email, in.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.log.Info("user registered", "uid", res.User.ID, "email", res.User.Email)
	writeJSON(w, http.StatusCreated, res)
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := rt.auth.Login(in.Email, in.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// self returns the path user id when it matches the caller, answering 403 otherwise.
func (rt *Router) self(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || c.UID != id {
		writeMessage(w, r, http.StatusForbidden, "error.forbidden")
		return "", false
	}
	return id, true
}

func (rt *Router) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.self(w, r)
	if !ok {
		return
	}
	u, err := rt.users.Get(id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "plan": rt.membership.PlanFor(u.MembershipTier)})
}

func (rt *Router) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.self(w, r)
	if !ok {
		return
	}
	var patch services.UserPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	u, err := rt.users.Update(id, &patch)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "plan": rt.membership.PlanFor(u.MembershipTier)})
}

func (rt *Router) handleUserHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.self(w, r)
	if !ok {
		return
	}
	list, err := rt.users.History(id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": list})
}
