package metrics

// Pre-defined metrics for the inclusion-proof service. All metrics live in
// DefaultRegistry so they are globally accessible without passing a
// registry around.

var (
	// ---- GetKeccakInclusion RPC metrics ----

	// InclusionRequests counts incoming GetKeccakInclusion calls.
	InclusionRequests = DefaultRegistry.Counter("inclusion.requests")
	// InclusionRequestErrors counts GetKeccakInclusion calls that returned
	// an error (invalid argument or internal).
	InclusionRequestErrors = DefaultRegistry.Counter("inclusion.request_errors")
	// InclusionRequestLatency records GetKeccakInclusion latency in
	// milliseconds.
	InclusionRequestLatency = DefaultRegistry.Histogram("inclusion.request_latency_ms")

	// ---- Job state metrics ----

	// JobsPending tracks the number of jobs currently awaiting a prover
	// result.
	JobsPending = DefaultRegistry.Gauge("jobs.pending")
	// JobsCompleted counts jobs that reached JobStateCompleted.
	JobsCompleted = DefaultRegistry.Counter("jobs.completed")
	// JobsFailed counts jobs that reached JobStateFailed.
	JobsFailed = DefaultRegistry.Counter("jobs.failed")

	// ---- DA RPC client metrics ----

	// DARpcCalls counts calls issued to the DA node over daclient.
	DARpcCalls = DefaultRegistry.Counter("da_rpc.calls")
	// DARpcErrors counts daclient calls that returned an RpcError.
	DARpcErrors = DefaultRegistry.Counter("da_rpc.errors")
	// DARpcLatency records daclient round-trip latency in milliseconds.
	DARpcLatency = DefaultRegistry.Histogram("da_rpc.latency_ms")

	// ---- Prover backend metrics ----

	// ProverSubmissions counts requests handed to a prover.Backend.
	ProverSubmissions = DefaultRegistry.Counter("prover.submissions")
	// ProverPolls counts Poll calls issued by the reconciler.
	ProverPolls = DefaultRegistry.Counter("prover.polls")
	// ProverLatency records time from submission to a terminal Poll result,
	// in milliseconds.
	ProverLatency = DefaultRegistry.Histogram("prover.latency_ms")
)
