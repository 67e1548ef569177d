package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataview/mailscrub/report"
	"github.com/dataview/mailscrub/types"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := report.WriteCSV(&buf, []types.Outcome{
		{Email: "a@example.com", Domain: "example.com", Status: types.StatusValid},
		{Email: "b@nomx.test", Domain: "nomx.test", Status: types.StatusInvalid, Reason: "No MX records found"},
		{Email: "c@slow.test", Domain: "slow.test", Status: types.StatusError, Reason: "Validation error: boom, twice"},
	})
	require.NoError(t, err)

	want := "email,domain,status,reason\n" +
		"a@example.com,example.com,Valid,\n" +
		"b@nomx.test,nomx.test,Invalid,No MX records found\n" +
		"c@slow.test,slow.test,Error,\"Validation error: boom, twice\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, nil))
	assert.Equal(t, "email,domain,status,reason\n", buf.String())
}
