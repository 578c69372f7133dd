package ports

type IngestMetrics interface {
	RecordAccepted(endedReason string)
	RecordRejected()
	RecordUnauthorized()
	RecordFailure()
}
