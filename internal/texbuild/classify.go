// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package texbuild

import "fmt"

// StepKind distinguishes the compiler passes from the bibliography pass.
type StepKind int

const (
	StepCompiler StepKind = iota
	StepBibliography
)

func (k StepKind) String() string {
	switch k {
	case StepCompiler:
		return "compiler"
	case StepBibliography:
		return "bibliography"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// Step is one invocation in the compile sequence.
type Step struct {
	Name string
	Kind StepKind
	Bin  string
	Args []string
}

// Verdict is the classification of a step's result.
type Verdict int

const (
	// Success means the tool exited 0.
	Success Verdict = iota
	// Tolerated means the tool exited non-zero but the run may continue.
	Tolerated
	// Fatal means the sequence must stop for this topic.
	Fatal
)

func (v Verdict) String() string {
	switch v {
	case Success:
		return "success"
	case Tolerated:
		return "tolerated"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Outcome is the classification of one step. Reason is set for tolerated
// failures; Err is set for fatal ones.
type Outcome struct {
	Verdict Verdict
	Reason  string
	Err     *CompileError
}

// stdoutTailBytes bounds the slice of standard output kept in a CompileError.
const stdoutTailBytes = 500

// Classify decides how the driver proceeds after a step.
//
//   - exit 0: success
//   - the tool could not be started: fatal
//   - bibliography pass exited non-zero: tolerated, whatever else is on disk
//   - compiler pass exited non-zero but the artifact exists: tolerated
//   - compiler pass exited non-zero with no artifact: fatal
func Classify(step Step, res Result, artifactExists bool) Outcome {
	if res.StartErr == nil && res.ExitCode == 0 {
		return Outcome{Verdict: Success}
	}

	if res.StartErr != nil {
		return Outcome{Verdict: Fatal, Err: newCompileError(step, res)}
	}

	switch {
	case step.Kind == StepBibliography:
		return Outcome{
			Verdict: Tolerated,
			Reason:  fmt.Sprintf("%s exited with code %d; the document may have no citations", step.Bin, res.ExitCode),
		}
	case artifactExists:
		return Outcome{
			Verdict: Tolerated,
			Reason:  fmt.Sprintf("exit code %d, but the PDF was produced", res.ExitCode),
		}
	default:
		return Outcome{Verdict: Fatal, Err: newCompileError(step, res)}
	}
}

func newCompileError(step Step, res Result) *CompileError {
	return &CompileError{
		Step:       step,
		ExitCode:   res.ExitCode,
		Stderr:     res.Stderr,
		StdoutTail: tail(res.Stdout, stdoutTailBytes),
		StartErr:   res.StartErr,
	}
}

// tail returns at most n trailing bytes of s, never splitting a rune.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && s[i]&0xC0 == 0x80 {
		i++
	}
	return s[i:]
}
