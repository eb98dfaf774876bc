// Package dashboard computes branch reporting views over fetched records.
package dashboard

import (
	"sort"
	"time"

	"github.com/Veraticus/qflow/internal/model"
)

// DefaultLeaderboardDays is the look-back window of the leaderboard.
const DefaultLeaderboardDays = 7

const isoLayout = "2006-01-02"

// BranchTotal is the summed quantity of one branch.
type BranchTotal struct {
	Code  string
	Name  string
	Total int
}

// ProgramTotal is the summed quantity of one program within a branch.
type ProgramTotal struct {
	Program string
	Total   int
}

// BranchGroup is one branch's records for a day.
type BranchGroup struct {
	Code     string
	Name     string
	Records  []model.Record
	Programs []ProgramTotal
	Total    int
}

// MissingBranches lists, in directory order, the branches that have no
// record on date.
func MissingBranches(records []model.Record, directory model.BranchDirectory, date string) []string {
	submitted := make(map[string]bool)
	for _, r := range records {
		if r.Date == date {
			submitted[r.Branch] = true
		}
	}

	missing := []string{}
	for _, b := range directory {
		if !submitted[b.Code] {
			missing = append(missing, b.Name)
		}
	}
	return missing
}

// Leaderboard totals each branch over the days before now, now's date
// included, highest first.
func Leaderboard(records []model.Record, directory model.BranchDirectory, now time.Time, days int) []BranchTotal {
	if days <= 0 {
		days = DefaultLeaderboardDays
	}
	end := now.Format(isoLayout)
	start := now.AddDate(0, 0, -days).Format(isoLayout)

	totals := make(map[string]int)
	for _, r := range records {
		if r.Date >= start && r.Date <= end {
			totals[r.Branch] += r.Que
		}
	}

	ranking := make([]BranchTotal, 0, len(totals))
	for code, total := range totals {
		ranking = append(ranking, BranchTotal{
			Code:  code,
			Name:  branchName(directory, code),
			Total: total,
		})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Total != ranking[j].Total {
			return ranking[i].Total > ranking[j].Total
		}
		return ranking[i].Code < ranking[j].Code
	})
	return ranking
}

// GroupByBranch collects the records of date per branch, busiest branch
// first. Programs are totalled in first-seen order.
func GroupByBranch(records []model.Record, directory model.BranchDirectory, date string) []BranchGroup {
	var groups []BranchGroup
	index := make(map[string]int)

	for _, r := range records {
		if r.Date != date {
			continue
		}
		i, ok := index[r.Branch]
		if !ok {
			i = len(groups)
			index[r.Branch] = i
			groups = append(groups, BranchGroup{
				Code: r.Branch,
				Name: branchName(directory, r.Branch),
			})
		}
		g := &groups[i]
		g.Records = append(g.Records, r)
		g.Total += r.Que
		g.Programs = addProgram(g.Programs, r.Program, r.Que)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total > groups[j].Total
	})
	return groups
}

func addProgram(programs []ProgramTotal, program string, que int) []ProgramTotal {
	for i := range programs {
		if programs[i].Program == program {
			programs[i].Total += que
			return programs
		}
	}
	return append(programs, ProgramTotal{Program: program, Total: que})
}

func branchName(directory model.BranchDirectory, code string) string {
	if name, ok := directory.NameFor(code); ok {
		return name
	}
	return code
}
