package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", app.stateHandler)
	mux.HandleFunc("/products", app.productsHandler)
	mux.HandleFunc("/cart", app.cartHandler)
	mux.HandleFunc("/cart/items", app.cartItemsHandler)
	mux.HandleFunc("/reviews", app.reviewsHandler)
	mux.HandleFunc("/reviews/notice/ack", app.noticeAckHandler)
	mux.HandleFunc("/auth/signup/fields", app.fieldHandler(app.Session.SetSignUpField))
	mux.HandleFunc("/auth/login/fields", app.fieldHandler(app.Session.SetLoginField))
	mux.HandleFunc("/auth/signup", app.signUpHandler)
	mux.HandleFunc("/auth/login", app.loginHandler)
	mux.HandleFunc("/view/login/open", app.modalHandler(app.Session.OpenLogin))
	mux.HandleFunc("/view/login/close", app.modalHandler(app.Session.CloseLogin))
	mux.HandleFunc("/view/signup/open", app.modalHandler(app.Session.OpenSignUp))
	mux.HandleFunc("/view/signup/close", app.modalHandler(app.Session.CloseSignUp))
	mux.HandleFunc("/showcase", app.showcaseHandler)
	mux.HandleFunc("/showcase/next", app.showcaseNavHandler(app.Session.Rotator().Next))
	mux.HandleFunc("/showcase/prev", app.showcaseNavHandler(app.Session.Rotator().Prev))
	mux.HandleFunc("/healthz", app.healthHandler)
	mux.HandleFunc("/debug/metrics", app.metricsHandler)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/openapi.yaml", app.openapiHandler)
	mux.HandleFunc("/docs", app.docsHandler)
	return WithRequestID(WithLogging(mux))
}
