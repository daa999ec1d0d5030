// Package storeapitest provides an in-memory store backend for tests.
package storeapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"storedash/internal/models"
)

// Server is a fake storefront backend speaking the same REST surface as
// the real one. Fields may be edited between requests under Lock/Unlock.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	Tokens   map[string]bool
	Store    models.Store
	Products []models.Product
	Orders   []models.Order
	Payments []models.Payment
	Proofs   map[string][]byte

	// Analytics is served for every period unless FailAnalytics is set.
	Analytics     models.Analytics
	FailAnalytics bool
	// FailPath makes every request to that path answer 500.
	FailPath string
	// RefusePath makes every request to that path answer 200 with ok:false.
	RefusePath string
	// Status402 makes every request answer 402.
	Status402 bool

	AnalyticsPeriods []string
	Requests         []string
	nextID           int
}

// NewServer starts a backend accepting token and seeded with a store.
func NewServer(token string) *Server {
	s := &Server{
		Tokens: map[string]bool{token: true},
		Store:  models.Store{Name: "Test Shop", Currency: "₦", ChannelUsername: "testshop"},
		Proofs: map[string][]byte{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/store", s.getStore)
	mux.HandleFunc("PUT /api/store", s.putStore)
	mux.HandleFunc("PUT /api/store/bank", s.putBank)
	mux.HandleFunc("GET /api/products", s.listProducts)
	mux.HandleFunc("POST /api/products", s.createProduct)
	mux.HandleFunc("PUT /api/products/{id}", s.updateProduct)
	mux.HandleFunc("GET /api/orders", s.listOrders)
	mux.HandleFunc("PUT /api/orders/{id}/status", s.setOrderStatus)
	mux.HandleFunc("GET /api/payments", s.listPayments)
	mux.HandleFunc("GET /api/payments/{id}", s.getPayment)
	mux.HandleFunc("GET /api/payments/{id}/proof", s.getProof)
	mux.HandleFunc("PUT /api/payments/{id}/approve", s.decide(models.PaymentConfirmed))
	mux.HandleFunc("PUT /api/payments/{id}/reject", s.decide(models.PaymentRejected))
	mux.HandleFunc("GET /api/analytics", s.getAnalytics)

	s.Server = httptest.NewServer(s.guard(mux))
	return s
}

// Lock guards direct edits of the seeded data.
func (s *Server) Lock() { s.mu.Lock() }

// Unlock releases Lock.
func (s *Server) Unlock() { s.mu.Unlock() }

// Count returns how many requests matched "METHOD /path".
func (s *Server) Count(request string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.Requests {
		if r == request {
			n++
		}
	}
	return n
}

// Periods returns the analytics periods requested so far.
func (s *Server) Periods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.AnalyticsPeriods...)
}

// Payment returns a copy of the payment with id.
func (s *Server) Payment(id string) (models.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.Payments {
		if p.ID.String() == id {
			return p, true
		}
	}
	return models.Payment{}, false
}

func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.Requests = append(s.Requests, r.Method+" "+r.URL.Path)
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		authorized := s.Tokens[token]
		failPath := s.FailPath
		refusePath := s.RefusePath
		locked := s.Status402
		s.mu.Unlock()

		switch {
		case !authorized:
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"ok": false, "error": "Unauthorized"})
		case locked:
			writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{"ok": false, "error": "Subscription inactive"})
		case failPath != "" && r.URL.Path == failPath:
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"ok": false, "error": "boom"})
		case refusePath != "" && r.URL.Path == refusePath:
			writeJSON(w, http.StatusOK, map[string]interface{}{"ok": false, "error": "Refused"})
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, extra map[string]interface{}) {
	body := map[string]interface{}{"ok": true}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"ok": false, "error": msg})
}

func (s *Server) getStore(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(w, map[string]interface{}{"store": s.Store})
}

func (s *Server) putStore(w http.ResponseWriter, r *http.Request) {
	var in models.StoreSettings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "bad json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Store.Name = in.Name
	s.Store.Currency = in.Currency
	s.Store.DeliveryNote = in.DeliveryNote
	ok(w, nil)
}

func (s *Server) putBank(w http.ResponseWriter, r *http.Request) {
	var in models.BankDetails
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "bad json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Store.BankName = in.BankName
	s.Store.AccountNumber = in.AccountNumber
	s.Store.AccountName = in.AccountName
	ok(w, nil)
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(w, map[string]interface{}{"products": s.Products})
}

func productFrom(id string, in models.ProductInput) models.Product {
	p := models.Product{ID: models.ID(id), Name: in.Name, Price: in.Price, Description: in.Description, InStock: in.InStock}
	if in.PhotoFileID != nil {
		p.PhotoFileID = *in.PhotoFileID
	}
	return p
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "bad json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := productFrom(fmt.Sprintf("new-%d", s.nextID), in)
	s.Products = append(s.Products, p)
	ok(w, map[string]interface{}{"product": p})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "bad json")
		return
	}
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Products {
		if s.Products[i].ID.String() == id {
			s.Products[i] = productFrom(id, in)
			ok(w, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Product not found")
}

func (s *Server) listOrders(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(w, map[string]interface{}{"orders": s.Orders})
}

func (s *Server) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in models.OrderStatusBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "bad json")
		return
	}
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Orders {
		if s.Orders[i].ID.String() == id {
			s.Orders[i].Status = in.Status
			ok(w, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Order not found")
}

func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Payment{}
	for _, p := range s.Payments {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	ok(w, map[string]interface{}{"payments": out})
}

func (s *Server) getPayment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.Payments {
		if p.ID.String() == id {
			ok(w, map[string]interface{}{"payment": p})
			return
		}
	}
	fail(w, http.StatusNotFound, "Payment not found")
}

func (s *Server) getProof(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	data, found := s.Proofs[id]
	s.mu.Unlock()
	if !found {
		fail(w, http.StatusNotFound, "No proof")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(data)
}

// decide approves or rejects an awaiting payment. Approving also marks
// the linked order done.
func (s *Server) decide(to string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.Payments {
			p := &s.Payments[i]
			if p.ID.String() != id {
				continue
			}
			if p.Status != models.PaymentAwaiting {
				fail(w, http.StatusConflict, "Payment already "+p.Status)
				return
			}
			p.Status = to
			if to == models.PaymentConfirmed {
				for j := range s.Orders {
					if s.Orders[j].ID == p.OrderID {
						s.Orders[j].Status = models.OrderStatusDone
					}
				}
			}
			ok(w, nil)
			return
		}
		fail(w, http.StatusNotFound, "Payment not found")
	}
}

func (s *Server) getAnalytics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AnalyticsPeriods = append(s.AnalyticsPeriods, r.URL.Query().Get("period"))
	if s.FailAnalytics {
		fail(w, http.StatusInternalServerError, "analytics offline")
		return
	}
	ok(w, map[string]interface{}{"analytics": s.Analytics})
}
