package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"agent-launchpad/internal/apperr"
	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/fees"
	"agent-launchpad/internal/launch"
)

// looseString accepts a JSON string or number.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

type healthResponse struct {
	OK   bool      `json:"ok"`
	Time time.Time `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{OK: true, Time: s.now().UTC()})
}

type createPostRequest struct {
	domain.LaunchPayload
	Submolt string `json:"submolt"`
	Title   string `json:"title"`
}

type createPostResponse struct {
	Success bool `json:"success"`
	*launch.CreatePostResult
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var body createPostRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.launcher.CreatePost(detached(r), launch.CreatePostRequest{
		Payload: body.LaunchPayload,
		Submolt: body.Submolt,
		Title:   body.Title,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, createPostResponse{Success: true, CreatePostResult: res})
}

type launchRequest struct {
	MoltbookKey string                `json:"moltbook_key"`
	PostID      looseString           `json:"post_id"`
	DevBuySOL   *float64              `json:"dev_buy_sol"`
	PriorityFee *float64              `json:"priority_fee"`
	Payer       string                `json:"payer_public_key"`
	Mint        string                `json:"mint_public_key"`
	PostURL     string                `json:"post_url"`
	Payload     *domain.LaunchPayload `json:"payload"`
}

type launchResponse struct {
	Success bool `json:"success"`
	*launch.LaunchResult
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	var body launchRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.launcher.Launch(detached(r), launch.LaunchRequest{
		APIKey:         strings.TrimSpace(body.MoltbookKey),
		PostID:         string(body.PostID),
		Payer:          body.Payer,
		Mint:           body.Mint,
		DevBuySOL:      body.DevBuySOL,
		PriorityFeeSOL: body.PriorityFee,
		PostURL:        body.PostURL,
		Payload:        body.Payload,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, launchResponse{Success: true, LaunchResult: res})
}

type confirmRequest struct {
	Mint      string `json:"mint"`
	Signature string `json:"signature"`
}

type confirmResponse struct {
	Success   bool   `json:"success"`
	Mint      string `json:"mint"`
	Signature string `json:"signature"`
	Status    string `json:"status"`
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var body confirmRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	tok, err := s.launcher.Confirm(detached(r), body.Mint, body.Signature)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, confirmResponse{
		Success:   true,
		Mint:      tok.Mint,
		Signature: tok.Proofs.MintTx,
		Status:    tok.Status.String(),
	})
}

type sendTxRequest struct {
	SignedTx string `json:"signed_tx"`
}

type sendTxResponse struct {
	Signature string `json:"signature"`
}

func (s *Server) handleSendTx(w http.ResponseWriter, r *http.Request) {
	var body sendTxRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	sig, err := s.launcher.SubmitSignedTransaction(detached(r), body.SignedTx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sendTxResponse{Signature: sig})
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	tok, err := s.launcher.GetToken(r.Context(), mux.Vars(r)["mint"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tok)
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.launcher.ListTokens(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tokens == nil {
		tokens = []*domain.Token{}
	}
	s.writeJSON(w, http.StatusOK, tokens)
}

// statsResponse adds the fee earnings placeholder the dashboard expects.
type statsResponse struct {
	*launch.Stats
	AgentFeesEarned struct {
		USDValue float64 `json:"usdValue"`
	} `json:"agentFeesEarned"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.launcher.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statsResponse{Stats: st})
}

type claimRequest struct {
	Mint        string   `json:"mint"`
	PriorityFee *float64 `json:"priority_fee"`
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var body claimRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.fees.Claim(detached(r), body.Mint, body.PriorityFee)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type distributeRequest struct {
	Mint           string      `json:"mint"`
	AmountLamports looseString `json:"amount_lamports"`
}

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	var body distributeRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	var amount *uint64
	if raw := strings.TrimSpace(string(body.AmountLamports)); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			if n, perr := strconv.ParseInt(raw, 10, 64); perr == nil && n <= 0 {
				s.writeError(w, r, apperr.Policy(fees.NothingToDistribute))
				return
			}
			s.writeError(w, r, apperr.Validation("amount_lamports must be an integer"))
			return
		}
		amount = &v
	}
	res, err := s.fees.Distribute(detached(r), body.Mint, amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFeeStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.fees.Status(r.Context(), mux.Vars(r)["mint"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

type historyResponse struct {
	Mint   string             `json:"mint"`
	Events []*domain.FeeEvent `json:"events"`
}

func (s *Server) handleFeeHistory(w http.ResponseWriter, r *http.Request) {
	mint := mux.Vars(r)["mint"]
	events, err := s.fees.History(r.Context(), mint)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.FeeEvent{}
	}
	s.writeJSON(w, http.StatusOK, historyResponse{Mint: mint, Events: events})
}
