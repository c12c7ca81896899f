package api

import (
	"net/http"

	"github.com/soaringjerry/mindscope/internal/middleware"
	"github.com/soaringjerry/mindscope/internal/models"
	"github.com/soaringjerry/mindscope/internal/services"
)

// submissionView tells clients whether the caller's plan includes the detailed report.
// The detailed result is always returned.
type submissionView struct {
	*models.Submission
	DetailedReportAvailable bool `json:"detailedReportAvailable"`
}

func (rt *Router) view(r *http.Request, sub *models.Submission) submissionView {
	return submissionView{Submission: sub, DetailedReportAvailable: rt.membership.CanViewDetailedReport(callerTier(r))}
}

func (rt *Router) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	var in services.SubmissionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if c, ok := middleware.ClaimsFromContext(r.Context()); ok {
		in.UserID = c.UID
	}
	sub, err := rt.submissions.Create(&in)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.log.Info("submission created", "submission", sub.ID, "assessment", sub.AssessmentID)
	writeJSON(w, http.StatusCreated, rt.view(r, sub))
}

// handleGetSubmission hides submissions owned by another account behind a 404.
func (rt *Router) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := rt.submissions.Get(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if sub.UserID != "" {
		c, ok := middleware.ClaimsFromContext(r.Context())
		if !ok || c.UID != sub.UserID {
			rt.writeError(w, r, services.NewNotFoundError("Submission not found."))
			return
		}
	}
	writeJSON(w, http.StatusOK, rt.view(r, sub))
}

// handleListSubmissions lists the caller's own submissions, optionally for one assessment.
func (rt *Router) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	list, err := rt.submissions.List(services.SubmissionFilter{
		AssessmentID: r.URL.Query().Get("assessmentId"),
		UserID:       claims.UID,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": list})
}
