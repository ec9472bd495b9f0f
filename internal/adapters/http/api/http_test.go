package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/roster/internal/adapters/http/api"
	service "github.com/okian/roster/internal/app"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/internal/domain/validation"
	"github.com/okian/roster/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const adaBody = `{"position":"Treasurer","name":"Ada","hometown":"London","year":"Junior","major":"Math","bio":"engines"}`

type harness struct {
	svc     *service.Service
	handler http.Handler
}

func newHarness(opts ...service.Option) *harness {
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	server := api.NewServer(svc, svc, api.WithCORS(api.CORSConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
		MaxAge:         600,
	}))
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return &harness{svc: svc, handler: server.Handler(mux)}
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func decodeMember(w *httptest.ResponseRecorder) model.Member {
	var m model.Member
	So(json.Unmarshal(w.Body.Bytes(), &m), ShouldBeNil)
	return m
}

func decodeErrors(w *httptest.ResponseRecorder) map[string][]string {
	var errs map[string][]string
	So(json.Unmarshal(w.Body.Bytes(), &errs), ShouldBeNil)
	return errs
}

func TestMembers_List(t *testing.T) {
	Convey("Given the seeded roster", t, func() {
		h := newHarness()
		defer h.svc.Stop()

		Convey("When listing members", func() {
			w := h.do(http.MethodGet, "/members", "")

			Convey("Then all seven should come back in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				var members []model.Member
				So(json.Unmarshal(w.Body.Bytes(), &members), ShouldBeNil)
				So(len(members), ShouldEqual, 7)
				for i, m := range members {
					So(m.ID, ShouldEqual, i+1)
				}
			})
		})
	})

	Convey("Given an empty roster", t, func() {
		h := newHarness(service.WithSeedEnabled(false))
		defer h.svc.Stop()

		w := h.do(http.MethodGet, "/members", "")
		So(w.Code, ShouldEqual, http.StatusOK)
		So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
	})
}

func TestMembers_Get(t *testing.T) {
	Convey("Given the seeded roster", t, func() {
		h := newHarness()
		defer h.svc.Stop()

		Convey("An existing id should return that member", func() {
			w := h.do(http.MethodGet, "/members/2", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeMember(w).Name, ShouldEqual, "Lateef Saheed")
		})

		Convey("An unknown id should be a 404 with a message", func() {
			w := h.do(http.MethodGet, "/members/404", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, `"code":"not_found"`)
			So(w.Body.String(), ShouldContainSubstring, "Member not found.")
		})

		Convey("Non-numeric and signed ids should be 404", func() {
			for _, path := range []string{"/members/abc", "/members/-1", "/members/+1", "/members/1.5", "/members/99999999999999999999999"} {
				w := h.do(http.MethodGet, path, "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
			}
		})
	})
}

func TestMembers_Create(t *testing.T) {
	Convey("Given the seeded roster", t, func() {
		h := newHarness()
		defer h.svc.Stop()

		Convey("A valid payload should create member 8", func() {
			w := h.do(http.MethodPost, "/members", adaBody)
			So(w.Code, ShouldEqual, http.StatusCreated)
			m := decodeMember(w)
			So(m.ID, ShouldEqual, 8)

			Convey("And GET should round trip the fields", func() {
				got := decodeMember(h.do(http.MethodGet, "/members/8", ""))
				So(got, ShouldResemble, model.Member{
					ID: 8, Position: "Treasurer", Name: "Ada", Hometown: "London", Year: "Junior", Major: "Math", Bio: "engines",
				})
			})
		})

		Convey("Bio should default to the empty string", func() {
			w := h.do(http.MethodPost, "/members", `{"position":"P","name":"N","hometown":"H","year":"Y","major":"M"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(w.Body.String(), ShouldContainSubstring, `"bio":""`)
		})

		Convey("An empty payload should list every required field", func() {
			w := h.do(http.MethodPost, "/members", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			errs := decodeErrors(w)
			So(len(errs), ShouldEqual, 5)
			for _, f := range []string{"position", "name", "hometown", "year", "major"} {
				So(errs[f], ShouldResemble, []string{validation.MsgMissing})
			}
		})

		Convey("A client supplied id should be rejected", func() {
			w := h.do(http.MethodPost, "/members", `{"id":1,"position":"P","name":"N","hometown":"H","year":"Y","major":"M"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeErrors(w)["id"], ShouldResemble, []string{validation.MsgUnknown})
		})

		Convey("Malformed and missing bodies should be validation failures", func() {
			w := h.do(http.MethodPost, "/members", `{"name":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeErrors(w)[validation.SchemaKey], ShouldResemble, []string{validation.MsgInvalidJSON})

			w = h.do(http.MethodPost, "/members", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeErrors(w)[validation.SchemaKey], ShouldResemble, []string{validation.MsgInvalidInput})
		})

		Convey("Many creates should yield distinct ids", func() {
			seen := map[int]bool{}
			for i := 0; i < 20; i++ {
				m := decodeMember(h.do(http.MethodPost, "/members", adaBody))
				So(seen[m.ID], ShouldBeFalse)
				seen[m.ID] = true
			}
		})
	})
}

func TestMembers_Replace(t *testing.T) {
	Convey("Given an empty roster", t, func() {
		h := newHarness(service.WithSeedEnabled(false))
		defer h.svc.Stop()

		Convey("PUT on an absent id should create it with 201", func() {
			w := h.do(http.MethodPut, "/members/999", adaBody)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(decodeMember(w).ID, ShouldEqual, 999)

			Convey("And a second PUT should overwrite with 200", func() {
				w := h.do(http.MethodPut, "/members/999", `{"position":"Chair","name":"Grace","hometown":"NYC","year":"Senior","major":"CS"}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				m := decodeMember(w)
				So(m.ID, ShouldEqual, 999)
				So(m.Name, ShouldEqual, "Grace")
				So(m.Bio, ShouldEqual, "")

				var members []model.Member
				So(json.Unmarshal(h.do(http.MethodGet, "/members", "").Body.Bytes(), &members), ShouldBeNil)
				So(len(members), ShouldEqual, 1)
			})
		})

		Convey("PUT with a partial payload should be rejected", func() {
			w := h.do(http.MethodPut, "/members/1", `{"name":"only"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(len(decodeErrors(w)), ShouldEqual, 4)
		})

		Convey("PUT on id 0 should be rejected", func() {
			w := h.do(http.MethodPut, "/members/0", adaBody)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeErrors(w)["id"], ShouldNotBeEmpty)
		})
	})
}

func TestMembers_Patch(t *testing.T) {
	Convey("Given the seeded roster", t, func() {
		h := newHarness()
		defer h.svc.Stop()
		before := decodeMember(h.do(http.MethodGet, "/members/5", ""))

		Convey("Patching only bio should keep the rest", func() {
			w := h.do(http.MethodPatch, "/members/5", `{"bio":"Materials nerd"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			want := before
			want.Bio = "Materials nerd"
			So(decodeMember(w), ShouldResemble, want)
		})

		Convey("An empty patch should return the member unchanged", func() {
			w := h.do(http.MethodPatch, "/members/5", `{}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeMember(w), ShouldResemble, before)
		})

		Convey("Patching an absent id should be 404", func() {
			So(h.do(http.MethodPatch, "/members/77", `{"bio":"x"}`).Code, ShouldEqual, http.StatusNotFound)
			So(h.do(http.MethodPatch, "/members/77", `not json`).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("A bad field should be a 400 and leave the member alone", func() {
			w := h.do(http.MethodPatch, "/members/5", `{"year":2024}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeErrors(w)["year"], ShouldResemble, []string{validation.MsgNotString})
			So(decodeMember(h.do(http.MethodGet, "/members/5", "")), ShouldResemble, before)
		})

		Convey("A malformed body on an existing id should be a 400", func() {
			So(h.do(http.MethodPatch, "/members/5", `not json`).Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestMembers_Delete(t *testing.T) {
	Convey("Given the seeded roster", t, func() {
		h := newHarness()
		defer h.svc.Stop()

		Convey("Deleting twice should answer 204 with an empty body both times", func() {
			first := h.do(http.MethodDelete, "/members/3", "")
			So(first.Code, ShouldEqual, http.StatusNoContent)
			So(first.Body.Len(), ShouldEqual, 0)

			second := h.do(http.MethodDelete, "/members/3", "")
			So(second.Code, ShouldEqual, http.StatusNoContent)
			So(second.Body.Len(), ShouldEqual, 0)

			var members []model.Member
			So(json.Unmarshal(h.do(http.MethodGet, "/members", "").Body.Bytes(), &members), ShouldBeNil)
			So(len(members), ShouldEqual, 6)
			So(h.do(http.MethodGet, "/members/3", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Deleting a never-created id should be 204", func() {
			So(h.do(http.MethodDelete, "/members/31337", "").Code, ShouldEqual, http.StatusNoContent)
		})
	})
}

func TestServer_Routing(t *testing.T) {
	Convey("Given a registered server", t, func() {
		h := newHarness()
		defer h.svc.Stop()

		Convey("Health should answer ok", func() {
			w := h.do(http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Stats should report the roster size", func() {
			w := h.do(http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"members":7`)
		})

		Convey("Metrics should be exposed", func() {
			h.do(http.MethodGet, "/members", "")
			w := h.do(http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "roster_service_http_requests_total")
		})

		Convey("Unknown paths and methods should be rejected by the mux", func() {
			So(h.do(http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
			So(h.do(http.MethodPost, "/members/1", adaBody).Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Every response should carry a request id", func() {
			w := h.do(http.MethodGet, "/members/1", "")
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)

			req := httptest.NewRequest(http.MethodGet, "/members/1", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			rec := httptest.NewRecorder()
			h.handler.ServeHTTP(rec, req)
			So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})
	})
}

func TestServer_CORS(t *testing.T) {
	Convey("Given a server allowing the local frontend", t, func() {
		h := newHarness()
		defer h.svc.Stop()

		Convey("A preflight from an allowed origin should be answered", func() {
			req := httptest.NewRequest(http.MethodOptions, "/members/1", http.NoBody)
			req.Header.Set("Origin", "http://localhost:5173")
			req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			req.Header.Set("Access-Control-Request-Headers", "Content-Type")
			w := httptest.NewRecorder()
			h.handler.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNoContent)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://localhost:5173")
			So(w.Header().Get("Access-Control-Allow-Methods"), ShouldContainSubstring, "PATCH")
			So(w.Header().Get("Access-Control-Allow-Headers"), ShouldEqual, "Content-Type")
			So(w.Header().Get("Access-Control-Max-Age"), ShouldEqual, "600")
			So(w.Header().Get("Access-Control-Allow-Credentials"), ShouldEqual, "")
		})

		Convey("A simple request from an allowed origin should get the allow header", func() {
			req := httptest.NewRequest(http.MethodGet, "/members", http.NoBody)
			req.Header.Set("Origin", "http://localhost:5173")
			w := httptest.NewRecorder()
			h.handler.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://localhost:5173")
		})

		Convey("Other origins and other paths should get nothing", func() {
			req := httptest.NewRequest(http.MethodGet, "/members", http.NoBody)
			req.Header.Set("Origin", "https://evil.example")
			w := httptest.NewRecorder()
			h.handler.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "")
			So(w.Header().Values("Vary"), ShouldContain, "Origin")

			req = httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			req.Header.Set("Origin", "http://localhost:5173")
			w = httptest.NewRecorder()
			h.handler.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "")
			So(w.Header().Values("Vary"), ShouldNotContain, "Origin")
		})

		Convey("Member responses should vary on Origin even without one", func() {
			for _, origin := range []string{"", "http://localhost:5173"} {
				req := httptest.NewRequest(http.MethodGet, "/members/1", http.NoBody)
				if origin != "" {
					req.Header.Set("Origin", origin)
				}
				w := httptest.NewRecorder()
				h.handler.ServeHTTP(w, req)
				So(w.Header().Values("Vary"), ShouldResemble, []string{"Origin"})
			}
		})
	})
}

type failingDeps struct{ err error }

func (f failingDeps) List(context.Context) ([]model.Member, error)   { return nil, f.err }
func (f failingDeps) Get(context.Context, int) (model.Member, error) { return model.Member{}, f.err }
func (f failingDeps) Create(context.Context, validation.Payload) (model.Member, error) {
	return model.Member{}, f.err
}
func (f failingDeps) Replace(context.Context, int, validation.Payload) (model.Member, bool, error) {
	return model.Member{}, false, f.err
}
func (f failingDeps) Patch(context.Context, int, validation.Payload) (model.Member, error) {
	return model.Member{}, f.err
}
func (f failingDeps) Delete(context.Context, int) error { return f.err }

func TestServer_ErrorMapping(t *testing.T) {
	Convey("Given dependencies that fail", t, func() {
		serve := func(err error, method, path, body string) *httptest.ResponseRecorder {
			server := api.NewServer(failingDeps{err: err}, nil)
			mux := http.NewServeMux()
			server.Register(context.Background(), mux)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
			return w
		}

		Convey("An unexpected error should be a 500", func() {
			w := serve(errors.New("boom"), http.MethodGet, "/members", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, "internal_error")
			So(w.Body.String(), ShouldNotContainSubstring, "boom")
		})

		Convey("A stopped service should be a 503", func() {
			w := serve(service.ErrNotStarted, http.MethodDelete, "/members/1", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, `"unavailable"`)
			So(w.Body.String(), ShouldNotContainSubstring, "api.delete_member")
		})

		Convey("Stats without a provider should still answer", func() {
			w := serve(nil, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}
