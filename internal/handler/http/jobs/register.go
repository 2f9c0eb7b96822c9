package jobs

import (
	"net/http"

	"rental-notify/internal/handler/http/auth"
	jobUC "rental-notify/internal/usecase/job"
)

// Register wires the job-intake route. Intake is the only write surface for
// notification jobs; fan-out happens asynchronously on the worker side.
func Register(mux *http.ServeMux, svc jobUC.Service) {
	mux.Handle("POST   /jobs", auth.Authz(CreateHandler{svc}))
}
