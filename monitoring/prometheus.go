package monitoring

import (
	"net/http"

	"faucetd/logx"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ClaimRejectedReason string

var (
	ClaimFaucetDisabled  ClaimRejectedReason = "faucet_disabled"
	ClaimInvalidCode     ClaimRejectedReason = "invalid_code"
	ClaimAlreadyClaimed  ClaimRejectedReason = "already_claimed"
	ClaimInvalidIdentity ClaimRejectedReason = "invalid_identity"
	ClaimRejectedUnknown ClaimRejectedReason = "other"
)

type faucetPromMetrics struct {
	faucetUpUnixSeconds prometheus.Gauge
	grantedClaimCount   prometheus.Counter
	rejectedClaimCount  *prometheus.CounterVec
	unauthorizedCount   prometheus.Counter
	adminMutationCount  *prometheus.CounterVec
	faucetEnabled       prometheus.Gauge
	claimedIdentities   prometheus.Gauge
	totalClaims         prometheus.Gauge
	snapshotCount       prometheus.Counter
	panicCount          prometheus.Counter
}

func newFaucetPromMetrics() *faucetPromMetrics {
	return &faucetPromMetrics{
		faucetUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "faucetd_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the faucet process start",
			},
		),
		grantedClaimCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "faucetd_granted_claim_count",
				Help: "The total number of claims granted since process start",
			},
		),
		rejectedClaimCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faucetd_rejected_claim_count",
				Help: "The total number of claims rejected since process start, by reason",
			},
			[]string{"reason"},
		),
		unauthorizedCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "faucetd_unauthorized_admin_op_count",
				Help: "The total number of admin operations rejected by the authorization gate",
			},
		),
		adminMutationCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faucetd_admin_mutation_count",
				Help: "The total number of applied admin mutations, by operation",
			},
			[]string{"op"},
		),
		faucetEnabled: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "faucetd_enabled",
				Help: "Whether claiming is currently enabled (1) or disabled (0)",
			},
		),
		claimedIdentities: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "faucetd_claimed_identities",
				Help: "Number of identities currently in the claimed set",
			},
		),
		totalClaims: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "faucetd_total_claims",
				Help: "Length of the permanent claim audit trail",
			},
		),
		snapshotCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "faucetd_snapshot_count",
				Help: "The total number of state snapshots written",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "faucetd_panic_count",
				Help: "The total number of recovered panics in background goroutines",
			},
		),
	}
}

var faucetMetrics *faucetPromMetrics

// InitMetrics initializes metrics for the faucet but does not expose them yet
func InitMetrics() {
	faucetMetrics = newFaucetPromMetrics()
	faucetMetrics.faucetUpUnixSeconds.SetToCurrentTime()
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("METRICS", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func IncreaseGrantedClaimCount() {
	if faucetMetrics == nil {
		return
	}
	faucetMetrics.grantedClaimCount.Inc()
}

func RecordRejectedClaim(reason ClaimRejectedReason) {
	if faucetMetrics == nil {
		return
	}
	faucetMetrics.rejectedClaimCount.With(prometheus.Labels{
		"reason": string(reason),
	}).Inc()
}

func IncreaseUnauthorizedCount() {
	if faucetMetrics == nil {
		return
	}
	faucetMetrics.unauthorizedCount.Inc()
}

func RecordAdminMutation(op string) {
	if faucetMetrics == nil {
		return
	}
	faucetMetrics.adminMutationCount.With(prometheus.Labels{"op": op}).Inc()
}

func SetFaucetEnabled(enabled bool) {
	if faucetMetrics == nil {
		return
	}
	if enabled {
		faucetMetrics.faucetEnabled.Set(1)
	} else {
		faucetMetrics.faucetEnabled.Set(0)
	}
}

func SetClaimedIdentities(count int) {
	if faucetMetrics == nil {
		return
	}
	faucetMetrics.claimedIdentities.Set(float64(count))
}

func SetTotalClaims(count int) {
	if faucetMetrics == nil {
		return
	}
	faucetMetrics.totalClaims.Set(float64(count))
}

func IncreaseSnapshotCount() {
	if faucetMetrics == nil {
		return
	}
	faucetMetrics.snapshotCount.Inc()
}

func IncreasePanicCount() {
	if faucetMetrics == nil {
		return
	}
	faucetMetrics.panicCount.Inc()
}
