package dto

// SweepReport summarizes one scan-and-delete pass of the retention sweeper.
type SweepReport struct {
	RunId   string `json:"run_id"`
	Scanned int    `json:"scanned"`
	Removed int    `json:"removed"`
	Errors  int    `json:"errors"`
}
