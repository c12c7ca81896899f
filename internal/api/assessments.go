package api

import (
	"net/http"

	"github.com/soaringjerry/mindscope/internal/middleware"
	"github.com/soaringjerry/mindscope/internal/models"
	"github.com/soaringjerry/mindscope/internal/services"
)

// assessmentView annotates an assessment with whether the caller's plan unlocks it.
// The flag is informational; nothing is withheld.
type assessmentView struct {
	*models.Assessment
	Locked bool `json:"locked"`
}

// callerTier is the caller's tier from the token, or free for anonymous requests.
func callerTier(r *http.Request) models.MembershipTier {
	if c, ok := middleware.ClaimsFromContext(r.Context()); ok && c.Tier != "" {
		return c.Tier
	}
	return models.TierFree
}

func (rt *Router) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	list, err := rt.assessments.List()
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	tier := callerTier(r)
	out := make([]assessmentView, 0, len(list))
	for _, a := range list {
		out = append(out, assessmentView{Assessment: a, Locked: !rt.membership.CanAccessAssessment(tier, a.IsPremium)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": out})
}

func (rt *Router) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := rt.assessments.Get(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assessmentView{Assessment: a, Locked: !rt.membership.CanAccessAssessment(callerTier(r), a.IsPremium)})
}

func (rt *Router) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var in models.Assessment
	if !decodeJSON(w, r, &in) {
		return
	}
	a, err := rt.assessments.Create(&in)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.log.Info("assessment created", "assessment", a.ID)
	writeJSON(w, http.StatusCreated, a)
}

func (rt *Router) handleUpdateAssessment(w http.ResponseWriter, r *http.Request) {
	var patch services.AssessmentPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	a, err := rt.assessments.Update(r.PathValue("id"), &patch)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.log.Info("assessment updated", "assessment", a.ID)
	writeJSON(w, http.StatusOK, a)
}

func (rt *Router) handleDeleteAssessment(w http.ResponseWriter, r *http.Request) {
	if err := rt.assessments.Delete(r.PathValue("id")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.log.Info("assessment deleted", "assessment", r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.analytics.Summary(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleExport requires a plan with the export feature, checked against the stored account
// so that a tier change takes effect before the token is reissued.
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	u, err := rt.users.Get(claims.UID)
	if err != nil {
		if services.IsCode(err, services.ErrorNotFound) {
			writeMessage(w, r, http.StatusUnauthorized, "error.unauthorized")
			return
		}
		rt.writeError(w, r, err)
		return
	}
	if !rt.membership.CanExport(u.MembershipTier) {
		writeMessage(w, r, http.StatusForbidden, "error.export_plan")
		return
	}
	res, err := rt.export.ExportCSV(services.ExportParams{
		AssessmentID: r.PathValue("id"),
		Format:       r.URL.Query().Get("format"),
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+res.Filename)
	_, _ = w.Write(res.Data)
}
