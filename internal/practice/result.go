package practice

// Scores tallies resolved questions. Counters only ever grow within a session.
type Scores struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Skipped int `json:"skipped"`
}

// Tally is the number of questions that contributed to a counter.
func (s Scores) Tally() int {
	return s.Correct + s.Wrong + s.Skipped
}

// Result summarizes a completed session.
type Result struct {
	Total    int  `json:"total"`
	Correct  int  `json:"correct"`
	Wrong    int  `json:"wrong"`
	Skipped  int  `json:"skipped"`
	Accuracy int  `json:"accuracy"`
	TimedOut bool `json:"timed_out"`
}

// Accuracy is the percentage of answered questions answered correctly, rounded
// half up. It is 0 when nothing was answered.
func Accuracy(correct, wrong int) int {
	answered := correct + wrong
	if answered == 0 {
		return 0
	}
	return (correct*200 + answered) / (answered * 2)
}
