package main

import (
	"fmt"
	"sort"
	"strings"
)

// errorKeywords are the case-insensitive substrings that flag a command's
// output as an error, per spec §4.11. Grounded on the reference
// analyzer.c's error_keywords table.
var errorKeywords = []string{
	"error", "failed", "permission denied", "no such file",
	"command not found", "segmentation fault", "core dumped",
	"syntax error", "not permitted", "timed out", "killed",
}

// CommandFrequency is one entry in the Analyzer's top-commands-by-frequency
// ranking.
type CommandFrequency struct {
	Command string
	Count   int
}

// ErroredCommand is a command whose output matched an error keyword, along
// with the chunk snippet that matched.
type ErroredCommand struct {
	Command string
	Snippet string
}

// Report is the result of analyzing a document.
type Report struct {
	TotalCommands      int
	TotalDuration      float64
	AvgTimePerCommand  float64
	CommandsWithStderr int
	StderrPercentage   float64
	TopCommands        []CommandFrequency
	SlowestCommands    []Session
	ErroredCommands    []ErroredCommand
}

// Analyze computes a Report over every session in doc, per spec §4.11.
func Analyze(doc Document) Report {
	var r Report
	sessions := doc.Sessions
	r.TotalCommands = len(sessions)
	if len(sessions) == 0 {
		return r
	}

	firstStart := sessions[0].StartTime
	lastEnd := sessions[0].EndTime
	var totalDuration float64

	freq := map[string]int{}
	var freqOrder []string

	for _, s := range sessions {
		if s.StartTime < firstStart {
			firstStart = s.StartTime
		}
		if s.EndTime > lastEnd {
			lastEnd = s.EndTime
		}
		totalDuration += s.Duration

		if _, seen := freq[s.Command]; !seen {
			freqOrder = append(freqOrder, s.Command)
		}
		freq[s.Command]++

		if snippet, matched := firstErrorSnippet(s); matched {
			r.CommandsWithStderr++
			r.ErroredCommands = append(r.ErroredCommands, ErroredCommand{
				Command: s.Command,
				Snippet: snippet,
			})
		}
	}

	r.TotalDuration = lastEnd - firstStart
	r.AvgTimePerCommand = totalDuration / float64(len(sessions))
	r.StderrPercentage = float64(r.CommandsWithStderr) / float64(len(sessions)) * 100

	if len(r.ErroredCommands) > 10 {
		r.ErroredCommands = r.ErroredCommands[:10]
	}

	for _, cmd := range freqOrder {
		r.TopCommands = append(r.TopCommands, CommandFrequency{Command: cmd, Count: freq[cmd]})
	}
	sort.SliceStable(r.TopCommands, func(i, j int) bool {
		return r.TopCommands[i].Count > r.TopCommands[j].Count
	})
	if len(r.TopCommands) > 10 {
		r.TopCommands = r.TopCommands[:10]
	}

	slowest := make([]Session, len(sessions))
	copy(slowest, sessions)
	sort.SliceStable(slowest, func(i, j int) bool {
		return slowest[i].Duration > slowest[j].Duration
	})
	if len(slowest) > 5 {
		slowest = slowest[:5]
	}
	r.SlowestCommands = slowest

	return r
}

// firstErrorSnippet scans a session's concatenated chunk data for an error
// keyword (case-insensitive), per spec §4.11, and returns the data of the
// chunk in which the first match completes. The tail of the preceding
// chunks is carried along so a keyword split across chunks is still found.
func firstErrorSnippet(s Session) (string, bool) {
	carry := ""
	for _, c := range s.Chunks {
		joined := carry + c.Data
		lower := strings.ToLower(joined)
		for _, kw := range errorKeywords {
			if strings.Contains(lower, kw) {
				return c.Data, true
			}
		}
		if len(joined) > 32 {
			joined = joined[len(joined)-32:]
		}
		carry = joined
	}
	return "", false
}

// Print writes the report in the register of the reference
// print_session_summary: short section headers, emoji markers, a closing
// suggestion line.
func (r Report) Print() {
	fmt.Println("📊 Session Summary")
	fmt.Println("--------------------")
	fmt.Printf("Total commands:           %d\n", r.TotalCommands)
	fmt.Printf("Session duration:         %s\n", formatDuration(r.TotalDuration))
	fmt.Printf("Average time per command: %.1fs\n", r.AvgTimePerCommand)
	fmt.Printf("Commands with stderr:     %d (%.1f%%)\n", r.CommandsWithStderr, r.StderrPercentage)
	fmt.Println()

	if len(r.TopCommands) > 0 {
		fmt.Println("🔥 Top Commands")
		for i, c := range r.TopCommands {
			if i >= 3 {
				break
			}
			fmt.Printf("%d. %-12s %d times\n", i+1, c.Command, c.Count)
		}
		fmt.Println()
	}

	if len(r.SlowestCommands) > 0 {
		fmt.Println("⚠️  Slowest Commands")
		for i, s := range r.SlowestCommands {
			if i >= 2 {
				break
			}
			fmt.Printf("%-12s (%.1fs)\n", s.Command, s.Duration)
		}
		fmt.Println()
	}

	if len(r.ErroredCommands) > 0 {
		fmt.Println("❌ Errors")
		for i, e := range r.ErroredCommands {
			if i >= 2 {
				break
			}
			fmt.Printf("- %-12s → %s\n", e.Command, e.Snippet)
		}
		fmt.Println()
	}

	fmt.Println("💬 Suggestions")
	fmt.Println("- Try using `grep -i` for case-insensitive search")
}

// formatDuration renders seconds as MM:SS, or HH:MM:SS once an hour is
// reached, matching the reference format_duration.
func formatDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total - hours*3600) / 60
	secs := total - hours*3600 - minutes*60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
