package prstatus

import "strings"

// CheckRun is one entry of a status check rollup. A nil or empty conclusion
// means the run has not finished.
type CheckRun struct {
	Conclusion *string `json:"conclusion"`
}

// CheckStatus folds check run conclusions into "failed" when any finished
// run did not succeed, "pending" when some are still running, "passed" when
// all succeeded, and "" when there are no runs.
func CheckStatus(runs []CheckRun) string {
	if len(runs) == 0 {
		return ""
	}
	failed := false
	pending := false
	for _, run := range runs {
		conclusion := ""
		if run.Conclusion != nil {
			conclusion = strings.ToUpper(strings.TrimSpace(*run.Conclusion))
		}
		switch conclusion {
		case "":
			pending = true
		case "SUCCESS", "SKIPPED", "NEUTRAL":
		default:
			failed = true
		}
	}
	switch {
	case failed:
		return "failed"
	case pending:
		return "pending"
	default:
		return "passed"
	}
}
