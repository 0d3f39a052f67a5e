// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mainchain implements the collaborator contract SCDB's core
// consumes from the parent-chain daemon: fetching deposits and
// submitting WT^ candidates. It is a trimmed, blocking analogue of
// exccd/rpcclient's async-future request pattern, restricted to the
// two JSON-RPC calls the core actually needs.
package mainchain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
	"github.com/EXCCoin/exccd/wire"
	"github.com/decred/slog"

	"github.com/EXCCoin/scdb/scdberr"
	"github.com/EXCCoin/scdb/scdbjson"
	"github.com/EXCCoin/scdb/scdbtypes"
)

// log is this package's subsystem logger. It is a no-op until
// UseLogger wires in a real one.
var log = slog.Disabled

// UseLogger sets the subsystem logger used by the package.
func UseLogger(logger slog.Logger) {
	log = logger
}

// response is what a future receives once the daemon's reply arrives:
// the result payload, or an error if the call failed at any level.
type response struct {
	result json.RawMessage
	err    error
}

// rpcRequest is the wire envelope every call sends.
type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// rpcResponse is the wire envelope every reply is decoded from.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("mainchain: rpc error %d: %s", e.Code, e.Message)
}

// Client is a minimal JSON-RPC-over-HTTP client for the parent-chain
// daemon's SCDB-relevant commands. The zero value is not usable;
// construct one with New.
type Client struct {
	httpClient *http.Client
	endpoint   string
	user, pass string
	nextID     atomic.Uint64
}

// New builds a Client against endpoint (e.g. "http://127.0.0.1:8334/"),
// authenticating with HTTP basic auth.
func New(endpoint, user, pass string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		user:       user,
		pass:       pass,
	}
}

// sendCmd marshals method/params into a request, issues it, and
// returns a future-style channel the caller reads exactly once.
func (c *Client) sendCmd(ctx context.Context, method string, params any) <-chan *response {
	out := make(chan *response, 1)
	go func() {
		out <- c.do(ctx, method, params)
	}()
	return out
}

func (c *Client) do(ctx context.Context, method string, params any) *response {
	body, err := json.Marshal(rpcRequest{
		Jsonrpc: "1.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return &response{err: fmt.Errorf("mainchain: marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &response{err: fmt.Errorf("mainchain: build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &response{err: scdberr.New(scdberr.ErrUpstreamUnavailable,
			fmt.Sprintf("mainchain: %s: %v", method, err))}
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return &response{err: fmt.Errorf("mainchain: decode %s response: %w", method, err)}
	}
	if rpcResp.Error != nil {
		return &response{err: rpcResp.Error}
	}
	return &response{result: rpcResp.Result}
}

func receive(r <-chan *response) (json.RawMessage, error) {
	res := <-r
	if res.err != nil {
		return nil, res.err
	}
	return res.result, nil
}

// FutureFetchDepositsResult is a future promise to deliver the result
// of a FetchDepositsAsync call.
type FutureFetchDepositsResult <-chan *response

// Receive waits for the future and decodes it into SidechainDeposit
// values, skipping any entry whose raw transaction fails to decode.
func (r FutureFetchDepositsResult) Receive() ([]scdbtypes.SidechainDeposit, error) {
	raw, err := receive(r)
	if err != nil {
		return nil, err
	}
	var results []scdbjson.SidechainDepositResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("mainchain: unmarshal deposit list: %w", err)
	}

	deposits := make([]scdbtypes.SidechainDeposit, 0, len(results))
	for _, res := range results {
		rawTx, err := hex.DecodeString(res.RawTx)
		if err != nil {
			log.Warnf("skipping deposit with unparseable rawtx hex: %v", err)
			continue
		}
		var tx wire.MsgTx
		if err := tx.Deserialize(bytes.NewReader(rawTx)); err != nil {
			log.Warnf("skipping deposit with undeserializable transaction: %v", err)
			continue
		}
		keyBytes, err := hex.DecodeString(res.KeyID)
		if err != nil || len(keyBytes) != scdbtypes.KeyIDSize {
			log.Warnf("skipping deposit with malformed key id %q", res.KeyID)
			continue
		}
		var keyID scdbtypes.KeyID
		copy(keyID[:], keyBytes)
		deposits = append(deposits, scdbtypes.SidechainDeposit{
			SidechainID: res.SidechainID,
			KeyID:       keyID,
			Dtx:         &tx,
		})
	}
	return deposits, nil
}

// FetchDepositsAsync returns an instance of a type that can be used to
// get the result of the call at some future time by invoking Receive.
func (c *Client) FetchDepositsAsync(ctx context.Context, sid uint8) FutureFetchDepositsResult {
	cmd := scdbjson.NewListSidechainDepositsCmd(sid)
	return FutureFetchDepositsResult(c.sendCmd(ctx, "listsidechaindeposits", cmd))
}

// FetchDeposits fetches every deposit the daemon has observed for sid.
func (c *Client) FetchDeposits(ctx context.Context, sid uint8) ([]scdbtypes.SidechainDeposit, error) {
	return c.FetchDepositsAsync(ctx, sid).Receive()
}

// FutureSubmitWTJoinResult is a future promise to deliver the result
// of a SubmitWTJoinAsync call.
type FutureSubmitWTJoinResult <-chan *response

// Receive waits for the future and reports whether the daemon accepted
// the submission.
func (r FutureSubmitWTJoinResult) Receive() error {
	raw, err := receive(r)
	if err != nil {
		return err
	}
	var res scdbjson.SubmitWTJoinResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("mainchain: unmarshal submitwtjoin result: %w", err)
	}
	if !res.Accepted {
		return fmt.Errorf("mainchain: submitwtjoin rejected: %s", res.Reason)
	}
	return nil
}

// SubmitWTJoinAsync returns an instance of a type that can be used to
// get the result of the call at some future time by invoking Receive.
func (c *Client) SubmitWTJoinAsync(ctx context.Context, wtxid chainhash.Hash, rawTxHex string) FutureSubmitWTJoinResult {
	cmd := scdbjson.NewSubmitWTJoinCmd(wtxid.String(), rawTxHex)
	return FutureSubmitWTJoinResult(c.sendCmd(ctx, "submitwtjoin", cmd))
}

// SubmitWTJoin broadcasts a locally-assembled WT^ to the mainchain.
func (c *Client) SubmitWTJoin(ctx context.Context, wtxid chainhash.Hash, rawTxHex string) error {
	return c.SubmitWTJoinAsync(ctx, wtxid, rawTxHex).Receive()
}
