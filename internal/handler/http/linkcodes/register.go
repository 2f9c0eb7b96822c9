package linkcodes

import (
	"net/http"

	"rental-notify/internal/handler/http/auth"
	linkcodeUC "rental-notify/internal/usecase/linkcode"
)

// Register wires the linking-code routes. Generation is the end user asking
// for a code; consumption is the chat-bot backend reporting the code back.
func Register(mux *http.ServeMux, svc linkcodeUC.Service) {
	mux.Handle("POST   /link-codes", auth.Authz(GenerateHandler{svc}))
	mux.Handle("POST   /link-codes/consume", auth.Authz(ConsumeHandler{svc}))
}
