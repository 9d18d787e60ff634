package common

import "github.com/prometheus/client_golang/prometheus"

const (
	RPCRequestTotal           = "rpc_requests_total"
	RPCRequestDurationSeconds = "rpc_request_duration_seconds"
	ChallengeOperationTotal   = "challenge_operations_total"
	ChallengePayoutTotal      = "challenge_payouts_total"
	ChallengePayoutAmount     = "challenge_payout_amount_total"
	ChallengeDepositAmount    = "challenge_deposit_amount_total"
	ChallengeDepositTotal     = "challenge_deposits_total"
	CronJobRunTotal           = "cron_job_runs_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		RPCRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RPCRequestTotal,
			Help: "Count of all RPC requests",
		}, []string{"method", "code"}),
		ChallengeOperationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChallengeOperationTotal,
			Help: "Count of all challenge operations by result",
		}, []string{"action", "code"}),
		ChallengePayoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChallengePayoutTotal,
			Help: "Count of payouts by status",
		}, []string{"kind", "status"}),
		ChallengePayoutAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChallengePayoutAmount,
			Help: "Sum of amounts owed by accepted operations",
		}, []string{"kind"}),
		ChallengeDepositAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChallengeDepositAmount,
			Help: "Sum of entry fees received",
		}, []string{}),
		ChallengeDepositTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChallengeDepositTotal,
			Help: "Count of custody deposits by status",
		}, []string{"status"}),
		CronJobRunTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: CronJobRunTotal,
			Help: "Count of cron job runs",
		}, []string{"job"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		RPCRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: RPCRequestDurationSeconds,
			Help: "Duration of all RPC requests",
		}, []string{"method"}),
	}
)

// PromCollectors returns every metric of the service.
func PromCollectors() []prometheus.Collector {
	collectors := []prometheus.Collector{}
	for _, c := range PromCounters {
		collectors = append(collectors, c)
	}

	for _, h := range PromHistograms {
		collectors = append(collectors, h)
	}

	return collectors
}
