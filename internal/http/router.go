package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Timeline   *TimelineHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Timeline != nil {
		mux.HandleFunc("/timeline", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Timeline.Query(w, r)
		})

		mux.HandleFunc("/masters", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Timeline.CreateMaster(w, r)
		})

		mux.HandleFunc("/items", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Timeline.CreateOneOff(w, r)
		})

		mux.HandleFunc("/items/materialize", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Timeline.Materialize(w, r)
		})

		mux.HandleFunc("/items/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/items/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			id, action := rest, ""
			if slash := strings.IndexByte(rest, '/'); slash >= 0 {
				id, action = rest[:slash], rest[slash+1:]
			}
			if id == "" {
				http.NotFound(w, r)
				return
			}

			r = r.WithContext(ContextWithItemID(r.Context(), id))

			switch action {
			case "":
				switch r.Method {
				case http.MethodPut:
					cfg.Timeline.Update(w, r)
				case http.MethodDelete:
					cfg.Timeline.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodPut, http.MethodDelete)
				}
			case "complete":
				postOnly(w, r, cfg.Timeline.Complete)
			case "skip":
				postOnly(w, r, cfg.Timeline.Skip)
			case "defer":
				postOnly(w, r, cfg.Timeline.Defer)
			default:
				http.NotFound(w, r)
			}
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func postOnly(w http.ResponseWriter, r *http.Request, handle http.HandlerFunc) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	handle(w, r)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
