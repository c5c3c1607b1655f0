package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sleekspace/storefront/internal/auth"
	"github.com/sleekspace/storefront/internal/config"
	httpopenapi "github.com/sleekspace/storefront/internal/http/openapi"
	"github.com/sleekspace/storefront/internal/obs"
	"github.com/sleekspace/storefront/internal/review"
	"github.com/sleekspace/storefront/internal/session"
)

// App holds the handler dependencies.
type App struct {
	Cfg     config.Config
	Session *session.Session
	started time.Time
}

// NewApp constructs an App over the session.
func NewApp(cfg config.Config, sess *session.Session) *App {
	return &App{Cfg: cfg, Session: sess, started: time.Now()}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return false
	}
	return true
}

// decodeJSON enforces a JSON content type and strict field decoding.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) stateHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, a.Session.Snapshot())
}

func (a *App) productsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query().Get("q")
	products := a.Session.Search(q)
	writeJSON(w, http.StatusOK, map[string]any{
		"query":    q,
		"products": products,
	})
}

func (a *App) cartHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	items := a.Session.CartItems()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (a *App) cartItemsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		ProductID int `json:"product_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	count, err := a.Session.AddToCart(req.ProductID)
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, "unknown_product", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"cart_count": count,
		"request_id": RequestIDFromContext(r.Context()),
	})
	obs.Logger.Info("cart_item_added", "product_id", req.ProductID, "cart_count", count)
}

func (a *App) reviewsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"reviews": a.Session.Reviews()})
	case http.MethodPost:
		var req struct {
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		rev, err := a.Session.SubmitReview(req.Rating, req.Comment)
		switch {
		case errors.Is(err, session.ErrNoticePending):
			WriteJSONErrorNotice(w, http.StatusConflict, "notice_pending", err.Error(), a.Session.Notice())
		case review.IsValidationError(err):
			WriteJSONErrorNotice(w, http.StatusUnprocessableEntity, "validation_error", err.Error(), a.Session.Notice())
		case err != nil:
			WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
		default:
			writeJSON(w, http.StatusCreated, rev)
		}
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) noticeAckHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	a.Session.AcknowledgeNotice()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fieldHandler writes one form-buffer field through set.
func (a *App) fieldHandler(set func(field, value string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			Field string `json:"field"`
			Value string `json:"value"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := set(req.Field, req.Value); err != nil {
			WriteJSONError(w, http.StatusBadRequest, "unknown_field", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (a *App) signUpHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := a.Session.SubmitSignUp(r.Context()); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			WriteJSONError(w, http.StatusUnprocessableEntity, "password_mismatch", a.Session.Snapshot().AuthError)
			return
		}
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	// The confirmation send resolves in the background; the client polls
	// /state for the outcome.
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":           "pending",
		"pending_sign_ups": a.Session.PendingSignUps(),
		"request_id":       RequestIDFromContext(r.Context()),
	})
}

func (a *App) loginHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := a.Session.SubmitLogin(); err != nil {
		WriteJSONError(w, http.StatusUnauthorized, "authentication_failed", a.Session.Snapshot().AuthError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// modalHandler runs one flag toggle.
func (a *App) modalHandler(toggle func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		toggle()
		writeJSON(w, http.StatusOK, a.Session.Snapshot())
	}
}

func (a *App) showcaseHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	rot := a.Session.Rotator()
	_, idx, ok := rot.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"slides":  rot.Slides(),
		"current": idx,
		"empty":   !ok,
	})
}

// showcaseNavHandler runs one manual navigation step.
func (a *App) showcaseNavHandler(nav func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		nav()
		_, idx, _ := a.Session.Rotator().Current()
		writeJSON(w, http.StatusOK, map[string]any{"current": idx})
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	snap := a.Session.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"cart_count":       snap.CartCount,
		"review_count":     snap.ReviewCount,
		"signed_up":        snap.SignedUp,
		"pending_sign_ups": snap.PendingSignUps,
		"uptime_sec":       time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
