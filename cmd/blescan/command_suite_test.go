package main

import (
	"bytes"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/srg/blescan/internal/testutils"
	"github.com/srg/blescan/internal/testutils/mocks"
	"github.com/srg/blescan/pkg/config"
	"github.com/stretchr/testify/suite"
)

// fixedNow is the clock seen by commands under test.
var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// closableTransport adapts MockTransport to the scan command's transport.
type closableTransport struct {
	*mocks.MockTransport
}

func (t closableTransport) Close() error {
	t.MockTransport.Close()
	return nil
}

// CommandTestSuite runs commands against a mock transport.
// All cmd/blescan test suites should embed it.
type CommandTestSuite struct {
	suite.Suite
	Helper    *testutils.TestHelper
	Transport *mocks.MockTransport

	originalTransport func(*logrus.Logger, *config.Config) scanTransport
	originalNow       func() time.Time
}

func (s *CommandTestSuite) SetupTest() {
	s.Helper = testutils.NewTestHelper(s.T())
	s.Transport = mocks.NewMockTransport(s.Helper.Logger)

	s.originalTransport = newTransport
	s.originalNow = now
	newTransport = func(*logrus.Logger, *config.Config) scanTransport {
		return closableTransport{s.Transport}
	}
	now = func() time.Time { return fixedNow }

	resetFlags(rootCmd)
}

func (s *CommandTestSuite) TearDownTest() {
	newTransport = s.originalTransport
	now = s.originalNow
}

// ExecuteCommand runs the root command with args, returns stdout and error.
// Stderr is captured separately in the returned errOut.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (out string, errOut string, err error) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag of cmd and its subcommands to its default.
// Cobra keeps flag values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
