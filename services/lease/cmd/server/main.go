package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/happypapa636/RentChain/pkg/authn"
	"github.com/happypapa636/RentChain/pkg/coordinator"
	"github.com/happypapa636/RentChain/pkg/db"
	"github.com/happypapa636/RentChain/pkg/domain"
	"github.com/happypapa636/RentChain/pkg/httpx"
	"github.com/happypapa636/RentChain/pkg/ledger"
	"github.com/happypapa636/RentChain/pkg/registry"
	"github.com/happypapa636/RentChain/services/lease/internal/config"
	"github.com/happypapa636/RentChain/services/lease/internal/explain"
	"github.com/happypapa636/RentChain/services/lease/internal/notify"
	"github.com/happypapa636/RentChain/services/lease/internal/store"
	"github.com/happypapa636/RentChain/services/lease/internal/stream"
	"github.com/happypapa636/RentChain/services/lease/internal/wallethook"
)

func main() {
	_ = godotenv.Load()
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	ctx := context.Background()

	reg := registry.New()
	led := ledger.New(reg)

	// Postgres is optional: without DATABASE_URL the service runs on the
	// in-memory collections only (demo mode, nothing survives a restart).
	var journal coordinator.Journal = coordinator.NopJournal{}
	var st *store.Store
	if os.Getenv("DATABASE_URL") != "" {
		pool := db.MustConnect()
		st = store.New(pool)
		if err := st.Migrate(ctx); err != nil {
			log.Error("migrate failed", "error", err)
			os.Exit(1)
		}
		if err := restore(ctx, st, reg, led); err != nil {
			log.Error("restore failed", "error", err)
			os.Exit(1)
		}
		journal = st
		log.Info("state restored", "leases", reg.Len())
	}

	coord := coordinator.New(reg, led, journal, log)

	webhookCfg, err := config.LoadWebhooks(os.Getenv("WEBHOOK_CONFIG"))
	if err != nil {
		log.Error("webhook config invalid", "error", err)
		os.Exit(1)
	}
	if len(webhookCfg.Subscribers) > 0 {
		events, cancel := reg.Subscribe()
		defer cancel()
		go notify.NewDispatcher(webhookCfg.Subscribers, log).Run(ctx, events)
	}

	var explainer explain.Explainer = explain.Static{}
	if base := os.Getenv("EXPLAIN_BASE_URL"); base != "" {
		explainer = explain.New(base)
	}

	port := os.Getenv("SERVICE_PORT")
	if port == "" {
		port = "8084"
	}

	authRequired := os.Getenv("AUTH_REQUIRED") == "1" && st != nil
	r := newRouter(coord, reg, webhookCfg, explainer, st, authRequired, log)

	// DEV helper to mint a party credential for smoke tests
	if st != nil && os.Getenv("DEV_ENDPOINTS") == "1" {
		r.Post("/dev/credentials", devCredentialsHandler(st))
	}

	log.Info("lease service listening", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newRouter(coord *coordinator.Coordinator, reg *registry.Registry, webhookCfg config.Webhooks, explainer explain.Explainer, st *store.Store, authRequired bool, log *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	r.Group(func(api chi.Router) {
		if authRequired {
			api.Use(requireParty(st, log))
		}

		api.Post("/leases", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Landlord    string       `json:"landlord"`
				Terms       domain.Terms `json:"terms"`
				DocumentRef string       `json:"document_ref"`
			}
			if err := httpx.ReadJSON(r, &req); err != nil {
				httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
				return
			}
			l, err := coord.CreateLease(r.Context(), req.Landlord, req.Terms, req.DocumentRef)
			if err != nil {
				httpx.WriteDomainError(w, err)
				return
			}
			httpx.WriteJSON(w, 201, map[string]any{"request_id": httpx.NewRequestID(), "lease": l})
		})

		api.Post("/leases/{lease_id}:activate", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "lease_id")
			var req struct {
				Tenant       string `json:"tenant"`
				FirstPayment int64  `json:"first_payment"`
			}
			if err := httpx.ReadJSON(r, &req); err != nil {
				httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
				return
			}
			res, err := coord.ActivateLease(r.Context(), id, req.Tenant, req.FirstPayment)
			if err != nil {
				httpx.WriteDomainError(w, err)
				return
			}
			resp := map[string]any{"request_id": httpx.NewRequestID(), "lease": res.Lease}
			if res.Payment != nil {
				resp["payment"] = res.Payment
			}
			if res.PaymentErr != nil {
				// activation stands; the unpaid first period is the caller's
				// problem to surface
				resp["payment_error"] = res.PaymentErr.Error()
			}
			httpx.WriteJSON(w, 200, resp)
		})

		api.Post("/leases/{lease_id}:payRent", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "lease_id")
			var req struct {
				Payer  string `json:"payer"`
				Amount int64  `json:"amount"`
			}
			if err := httpx.ReadJSON(r, &req); err != nil {
				httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
				return
			}
			p, err := coord.PayRent(r.Context(), id, req.Payer, req.Amount)
			if err != nil {
				httpx.WriteDomainError(w, err)
				return
			}
			httpx.WriteJSON(w, 200, map[string]any{"request_id": httpx.NewRequestID(), "payment": p})
		})

		api.Post("/leases/{lease_id}:terminate", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "lease_id")
			var req struct {
				Reason domain.TerminationReason `json:"reason"`
			}
			if err := httpx.ReadJSON(r, &req); err != nil {
				httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
				return
			}
			l, err := coord.TerminateLease(r.Context(), id, req.Reason)
			if err != nil {
				httpx.WriteDomainError(w, err)
				return
			}
			httpx.WriteJSON(w, 200, map[string]any{"request_id": httpx.NewRequestID(), "lease": l})
		})
	})

	r.Get("/leases/{lease_id}", func(w http.ResponseWriter, r *http.Request) {
		l, err := coord.Lease(chi.URLParam(r, "lease_id"))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{"request_id": httpx.NewRequestID(), "lease": l})
	})

	r.Get("/landlords/{party_id}/leases", func(w http.ResponseWriter, r *http.Request) {
		leases := coord.LeasesByLandlord(chi.URLParam(r, "party_id"))
		httpx.WriteJSON(w, 200, map[string]any{"request_id": httpx.NewRequestID(), "leases": leases})
	})

	r.Get("/tenants/{party_id}/leases", func(w http.ResponseWriter, r *http.Request) {
		leases := coord.LeasesByTenant(chi.URLParam(r, "party_id"))
		httpx.WriteJSON(w, 200, map[string]any{"request_id": httpx.NewRequestID(), "leases": leases})
	})

	r.Get("/leases/{lease_id}/payments", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "lease_id")
		if _, err := coord.Lease(id); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{"request_id": httpx.NewRequestID(), "payments": coord.Payments(id)})
	})

	r.Get("/leases/{lease_id}/status", func(w http.ResponseWriter, r *http.Request) {
		ps, err := coord.Status(chi.URLParam(r, "lease_id"))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{
			"request_id":      httpx.NewRequestID(),
			"total_paid":      ps.TotalPaid,
			"next_due_period": ps.NextDuePeriod,
			"delinquent":      ps.Delinquent,
		})
	})

	r.Post("/leases/{lease_id}:explain", func(w http.ResponseWriter, r *http.Request) {
		l, err := coord.Lease(chi.URLParam(r, "lease_id"))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		analysis, err := explainer.Explain(r.Context(), l.DocumentRef)
		if err != nil {
			httpx.WriteError(w, 502, "EXPLAINER_ERROR", err.Error(), nil)
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{
			"request_id":      httpx.NewRequestID(),
			"summary":         analysis.Summary,
			"key_terms":       analysis.KeyTerms,
			"risks":           analysis.Risks,
			"recommendations": analysis.Recommendations,
		})
	})

	r.Get("/events", stream.NewServer(reg, log).Handler())

	wallet := wallethook.NewIngressHandler(webhookCfg, coord, log)
	r.Post("/webhooks/wallet/{endpoint_token}", wallet.HandleIngress)

	return r
}

func devCredentialsHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var in struct {
			PartyID string `json:"party_id"`
			Role    string `json:"role"`
			Token   string `json:"token"`
		}
		if err := httpx.ReadJSON(req, &in); err != nil {
			httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
			return
		}
		if in.Role != authn.RoleLandlord && in.Role != authn.RoleTenant {
			httpx.WriteError(w, 400, "BAD_ROLE", "role must be LANDLORD or TENANT", nil)
			return
		}
		if err := st.UpsertCredential(req.Context(), authn.HashToken(in.Token), in.PartyID, in.Role); err != nil {
			httpx.WriteError(w, 500, "DB_ERROR", err.Error(), nil)
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{"request_id": httpx.NewRequestID(), "party_id": in.PartyID})
	}
}

func restore(ctx context.Context, st *store.Store, reg *registry.Registry, led *ledger.Ledger) error {
	leases, err := st.LoadLeases(ctx)
	if err != nil {
		return err
	}
	for _, l := range leases {
		reg.Restore(l)
	}
	payments, err := st.LoadPayments(ctx)
	if err != nil {
		return err
	}
	for _, p := range payments {
		led.Restore(p)
	}
	return nil
}

func requireParty(st *store.Store, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authn.AuthenticateBearer(r.Context(), st.DB, r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, authn.ErrUnauthorized) {
					httpx.WriteError(w, 401, "UNAUTHORIZED", "missing or invalid bearer token", nil)
					return
				}
				httpx.WriteError(w, 500, "DB_ERROR", err.Error(), nil)
				return
			}
			log.Debug("authenticated party", "party_id", identity.PartyID, "role", identity.Role)
			next.ServeHTTP(w, r)
		})
	}
}
