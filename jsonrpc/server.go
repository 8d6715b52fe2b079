package jsonrpc

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"faucetd/errors"
	"faucetd/faucet"
	"faucetd/jsonx"
	"faucetd/logx"
	"faucetd/monitoring"
	"faucetd/types"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
)

// --- Error type used by handlers ---

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var rpcErrorCodes = map[errors.FaucetErrorCode]int{
	errors.ErrCodeInternal:        -32000,
	errors.ErrCodeUnauthorized:    -32001,
	errors.ErrCodeFaucetDisabled:  -32002,
	errors.ErrCodeInvalidCode:     -32003,
	errors.ErrCodeAlreadyClaimed:  -32004,
	errors.ErrCodeInvalidIdentity: -32005,
	errors.ErrCodeSnapshotFailure: -32006,
	errors.ErrCodeInvalidRequest:  -32602,
}

func fromFaucetError(err error) *rpcError {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*errors.FaucetError); ok {
		code, known := rpcErrorCodes[fe.Code]
		if !known {
			code = -32000
		}
		return &rpcError{Code: code, Message: fe.Error()}
	}
	return &rpcError{Code: -32000, Message: err.Error()}
}

func toJRPC2Error(e *rpcError) error {
	if e == nil {
		return nil
	}
	var faucetError errors.FaucetError
	err := jsonx.Unmarshal([]byte(e.Message), &faucetError)
	if err == nil && faucetError.Code != "" {
		return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", faucetError.Message).WithData(faucetError)
	}
	return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", e.Message)
}

// --- Params/Results ---
//
// The caller field carries the identity resolved by the host
// environment fronting this service; it is trusted, only its shape is
// checked here.

type claimParams struct {
	Caller string `json:"caller"`
	Code   string `json:"code"`
}

type toggleFaucetParams struct {
	Caller  string `json:"caller"`
	Enabled bool   `json:"enabled"`
}

type setClaimCodeParams struct {
	Caller string `json:"caller"`
	Code   string `json:"code"`
}

type setClaimAmountParams struct {
	Caller string `json:"caller"`
	Amount uint64 `json:"amount"`
}

type callerOnlyParams struct {
	Caller string `json:"caller"`
}

type adminTargetParams struct {
	Caller   string `json:"caller"`
	Identity string `json:"identity"`
}

type ackResponse struct {
	Ok bool `json:"ok"`
}

type claimEntry struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

type claimListResponse struct {
	Claims []claimEntry `json:"claims"`
}

type faucetInfoResponse struct {
	Enabled          bool     `json:"enabled"`
	ClaimAmount      uint64   `json:"claim_amount"`
	AuthorizedAdmins []string `json:"authorized_admins"`
	ClaimedCount     int      `json:"claimed_count"`
	TotalClaimCount  int      `json:"total_claim_count"`
}

// --- Server ---

type Server struct {
	addr       string
	faucetSvc  *faucet.Service
	corsConfig CORSConfig
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

func NewServer(addr string, faucetSvc *faucet.Service) *Server {
	return &Server{
		addr:      addr,
		faucetSvc: faucetSvc,
		corsConfig: CORSConfig{
			AllowedOrigins: []string{},
			AllowedMethods: []string{},
			AllowedHeaders: []string{},
			MaxAge:         0,
		},
	}
}

func (s *Server) Start() {
	methods := s.buildMethodMap()
	jh := jhttp.NewBridge(methods, &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		jh.ServeHTTP(w, r)
	})

	http.Handle("/", h)
	logx.Info("JSONRPC", "Listening on ", s.addr)
	go http.ListenAndServe(s.addr, nil)
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		"faucet.claim": handler.New(func(ctx context.Context, p claimParams) (*ackResponse, error) {
			res, err := s.rpcClaim(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"faucet.toggle": handler.New(func(ctx context.Context, p toggleFaucetParams) (*ackResponse, error) {
			res, err := s.rpcToggleFaucet(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"faucet.setcode": handler.New(func(ctx context.Context, p setClaimCodeParams) (*ackResponse, error) {
			res, err := s.rpcSetClaimCode(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"faucet.setamount": handler.New(func(ctx context.Context, p setClaimAmountParams) (*ackResponse, error) {
			res, err := s.rpcSetClaimAmount(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"faucet.resetclaimed": handler.New(func(ctx context.Context, p callerOnlyParams) (*ackResponse, error) {
			res, err := s.rpcResetClaimed(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"faucet.addadmin": handler.New(func(ctx context.Context, p adminTargetParams) (*ackResponse, error) {
			res, err := s.rpcAddAdmin(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"faucet.removeadmin": handler.New(func(ctx context.Context, p adminTargetParams) (*ackResponse, error) {
			res, err := s.rpcRemoveAdmin(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"faucet.getrecentclaims": handler.New(func(ctx context.Context) (*claimListResponse, error) {
			return s.rpcGetRecentClaims(), nil
		}),
		"faucet.gettotalclaims": handler.New(func(ctx context.Context) (*claimListResponse, error) {
			return s.rpcGetTotalClaims(), nil
		}),
		"faucet.getinfo": handler.New(func(ctx context.Context) (*faucetInfoResponse, error) {
			return s.rpcGetInfo(), nil
		}),
	}
}

// --- Implementations ---

func (s *Server) rpcClaim(p claimParams) (*ackResponse, *rpcError) {
	if err := types.ValidateIdentity(p.Caller); err != nil {
		monitoring.RecordRejectedClaim(monitoring.ClaimInvalidIdentity)
		return nil, fromFaucetError(errors.NewInvalidIdentityError())
	}
	if err := s.faucetSvc.Claim(p.Caller, p.Code); err != nil {
		return nil, fromFaucetError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcToggleFaucet(p toggleFaucetParams) (*ackResponse, *rpcError) {
	if err := s.faucetSvc.SetFaucetEnabled(p.Caller, p.Enabled); err != nil {
		return nil, fromFaucetError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcSetClaimCode(p setClaimCodeParams) (*ackResponse, *rpcError) {
	if err := s.faucetSvc.SetClaimCode(p.Caller, p.Code); err != nil {
		return nil, fromFaucetError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcSetClaimAmount(p setClaimAmountParams) (*ackResponse, *rpcError) {
	if err := s.faucetSvc.SetClaimAmount(p.Caller, p.Amount); err != nil {
		return nil, fromFaucetError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcResetClaimed(p callerOnlyParams) (*ackResponse, *rpcError) {
	if err := s.faucetSvc.ResetClaimedIdentities(p.Caller); err != nil {
		return nil, fromFaucetError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcAddAdmin(p adminTargetParams) (*ackResponse, *rpcError) {
	if err := s.faucetSvc.AddAdmin(p.Caller, p.Identity); err != nil {
		return nil, fromFaucetError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcRemoveAdmin(p adminTargetParams) (*ackResponse, *rpcError) {
	if err := s.faucetSvc.RemoveAdmin(p.Caller, p.Identity); err != nil {
		return nil, fromFaucetError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcGetRecentClaims() *claimListResponse {
	return toClaimList(s.faucetSvc.GetRecentClaims())
}

func (s *Server) rpcGetTotalClaims() *claimListResponse {
	return toClaimList(s.faucetSvc.GetTotalClaims())
}

func (s *Server) rpcGetInfo() *faucetInfoResponse {
	info := s.faucetSvc.Info()
	return &faucetInfoResponse{
		Enabled:          info.Enabled,
		ClaimAmount:      info.ClaimAmount,
		AuthorizedAdmins: info.AuthorizedAdmins,
		ClaimedCount:     info.ClaimedCount,
		TotalClaimCount:  info.TotalClaimCount,
	}
}

func toClaimList(records []types.ClaimRecord) *claimListResponse {
	claims := make([]claimEntry, len(records))
	for i, r := range records {
		claims[i] = claimEntry{Address: r.Address, Amount: r.Amount}
	}
	return &claimListResponse{Claims: claims}
}

// --- CORS ---

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsConfig.AllowedOrigins) > 0 {
		if s.corsConfig.AllowedOrigins[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			origin := r.Header.Get("Origin")
			for _, allowedOrigin := range s.corsConfig.AllowedOrigins {
				if origin == allowedOrigin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
	}

	if len(s.corsConfig.AllowedMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(s.corsConfig.AllowedMethods, ", "))
	}

	if len(s.corsConfig.AllowedHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(s.corsConfig.AllowedHeaders, ", "))
	}

	if s.corsConfig.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", s.corsConfig.MaxAge))
	}
}

// --- Env helpers ---

// CORSFromEnv reads environment variables and constructs a CORSConfig.
// Returns (cfg, true) if any CORS-related env var is set; otherwise (zero, false).
//
// Env vars:
// - CORS_ALLOWED_ORIGINS: comma-separated list
// - CORS_ALLOWED_METHODS: comma-separated list
// - CORS_ALLOWED_HEADERS: comma-separated list
// - CORS_MAX_AGE: integer seconds
func CORSFromEnv() (CORSConfig, bool) {
	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	methods := os.Getenv("CORS_ALLOWED_METHODS")
	headers := os.Getenv("CORS_ALLOWED_HEADERS")
	maxAgeStr := os.Getenv("CORS_MAX_AGE")

	var maxAge int
	if maxAgeStr != "" {
		if v, err := strconv.Atoi(maxAgeStr); err == nil {
			maxAge = v
		}
	}

	var allowedOrigins, allowedMethods, allowedHeaders []string
	if origins != "" {
		allowedOrigins = splitAndTrim(origins)
	}
	if methods != "" {
		allowedMethods = splitAndTrim(methods)
	}
	if headers != "" {
		allowedHeaders = splitAndTrim(headers)
	}

	if allowedOrigins == nil && allowedMethods == nil && allowedHeaders == nil && maxAge == 0 {
		return CORSConfig{}, false
	}

	return CORSConfig{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: allowedMethods,
		AllowedHeaders: allowedHeaders,
		MaxAge:         maxAge,
	}, true
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
