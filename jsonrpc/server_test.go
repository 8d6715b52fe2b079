package jsonrpc

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"faucetd/db"
	"faucetd/errors"
	"faucetd/faucet"
	"faucetd/store"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdentity(t *testing.T) string {
	t.Helper()
	pubKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(pubKey)
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	st, err := store.NewGenericFaucetStore(db.NewMemoryProvider())
	require.NoError(t, err)
	svc := faucet.NewService(st)
	admin := newTestIdentity(t)
	require.NoError(t, svc.Initialize([]string{admin}, faucet.DeployDefaults{Enabled: true, Amount: 5, ClaimCode: "ABC123"}))
	return NewServer(":0", svc), admin
}

func TestMethodMapCoversAllOperations(t *testing.T) {
	srv, _ := newTestServer(t)
	methods := srv.buildMethodMap()

	for _, name := range []string{
		"faucet.claim",
		"faucet.toggle",
		"faucet.setcode",
		"faucet.setamount",
		"faucet.resetclaimed",
		"faucet.addadmin",
		"faucet.removeadmin",
		"faucet.getrecentclaims",
		"faucet.gettotalclaims",
		"faucet.getinfo",
	} {
		assert.Contains(t, methods, name)
	}
}

func TestRPCClaimFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	user := newTestIdentity(t)

	res, rpcErr := srv.rpcClaim(claimParams{Caller: user, Code: "ABC123"})
	require.Nil(t, rpcErr)
	assert.True(t, res.Ok)

	recent := srv.rpcGetRecentClaims()
	require.Len(t, recent.Claims, 1)
	assert.Equal(t, user, recent.Claims[0].Address)
	assert.Equal(t, uint64(5), recent.Claims[0].Amount)

	_, rpcErr = srv.rpcClaim(claimParams{Caller: user, Code: "ABC123"})
	require.NotNil(t, rpcErr)
	assert.Equal(t, rpcErrorCodes[errors.ErrCodeAlreadyClaimed], rpcErr.Code)
}

func TestRPCClaimRejectsMalformedCaller(t *testing.T) {
	srv, _ := newTestServer(t)

	_, rpcErr := srv.rpcClaim(claimParams{Caller: "not base58", Code: "ABC123"})
	require.NotNil(t, rpcErr)
	assert.Equal(t, rpcErrorCodes[errors.ErrCodeInvalidIdentity], rpcErr.Code)
}

func TestRPCAdminOpsRequireAuthorization(t *testing.T) {
	srv, admin := newTestServer(t)
	outsider := newTestIdentity(t)

	_, rpcErr := srv.rpcToggleFaucet(toggleFaucetParams{Caller: outsider, Enabled: false})
	require.NotNil(t, rpcErr)
	assert.Equal(t, rpcErrorCodes[errors.ErrCodeUnauthorized], rpcErr.Code)

	res, rpcErr := srv.rpcToggleFaucet(toggleFaucetParams{Caller: admin, Enabled: false})
	require.Nil(t, rpcErr)
	assert.True(t, res.Ok)

	info := srv.rpcGetInfo()
	assert.False(t, info.Enabled)

	// With the faucet now disabled, claims fail with the disabled code.
	_, rpcErr = srv.rpcClaim(claimParams{Caller: newTestIdentity(t), Code: "ABC123"})
	require.NotNil(t, rpcErr)
	assert.Equal(t, rpcErrorCodes[errors.ErrCodeFaucetDisabled], rpcErr.Code)
}

func TestRPCAdminManagement(t *testing.T) {
	srv, admin := newTestServer(t)
	second := newTestIdentity(t)

	res, rpcErr := srv.rpcAddAdmin(adminTargetParams{Caller: admin, Identity: second})
	require.Nil(t, rpcErr)
	assert.True(t, res.Ok)

	info := srv.rpcGetInfo()
	assert.Len(t, info.AuthorizedAdmins, 2)

	_, rpcErr = srv.rpcRemoveAdmin(adminTargetParams{Caller: second, Identity: admin})
	require.Nil(t, rpcErr)

	// second is now the last admin; removing it is rejected.
	_, rpcErr = srv.rpcRemoveAdmin(adminTargetParams{Caller: second, Identity: second})
	require.NotNil(t, rpcErr)
	assert.Equal(t, rpcErrorCodes[errors.ErrCodeInvalidRequest], rpcErr.Code)
}

func TestErrorMappingPreservesCodeAndMessage(t *testing.T) {
	rpcErr := fromFaucetError(errors.NewAlreadyClaimedError())
	require.NotNil(t, rpcErr)
	assert.Equal(t, -32004, rpcErr.Code)

	jerr := toJRPC2Error(rpcErr)
	require.Error(t, jerr)
	assert.Contains(t, jerr.Error(), errors.ErrMsgAlreadyClaimed)

	// Non-faucet errors fall back to the internal code.
	rpcErr = fromFaucetError(assert.AnError)
	assert.Equal(t, -32000, rpcErr.Code)
}

func TestGetTotalClaimsUnbounded(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 12; i++ {
		_, rpcErr := srv.rpcClaim(claimParams{Caller: newTestIdentity(t), Code: "ABC123"})
		require.Nil(t, rpcErr)
	}

	assert.Len(t, srv.rpcGetRecentClaims().Claims, faucet.RecentClaimsLimit)
	assert.Len(t, srv.rpcGetTotalClaims().Claims, 12)
}
