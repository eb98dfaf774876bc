package model

// Record is one row of the remote booking sheet.
type Record struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Branch  string `json:"branch"`
	Program string `json:"program"`
	Sub     string `json:"sub"`
	Que     int    `json:"que"`
}

// Submission is a confirmed batch of items for one branch and day.
type Submission struct {
	Date   string         `json:"date"`
	Branch string         `json:"branch"`
	Items  []DetectedItem `json:"items"`
}

// TotalQue sums the quantity of every item.
func (s Submission) TotalQue() int {
	total := 0
	for _, item := range s.Items {
		total += item.Que
	}
	return total
}
