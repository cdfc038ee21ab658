package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/masomo-portal/core/listing"
	"github.com/trezcool/masomo-portal/core/school"
	"github.com/trezcool/masomo-portal/services/export"
	"github.com/trezcool/masomo-portal/services/restapi"
	"github.com/trezcool/masomo-portal/storage/stubapi"
	"github.com/trezcool/masomo-portal/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	_, _, url := testutil.StubAPI(t, stubapi.Options{}, true)

	var out bytes.Buffer
	return &commandLine{
		client:   restapi.New(restapi.Options{BaseURL: url}),
		exporter: export.NewService(),
		logger:   testutil.Logger(),
		out:      &out,
		pageSize: 10,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runCLI(t *testing.T, cli *commandLine, tt cliTest) error {
	t.Helper()
	args := append([]string{"admin"}, tt.args...)
	err := cli.run(args)
	if err != nil {
		if tt.wantErr != nil {
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		} else if tt.wantErrStr != "" {
			if !strings.Contains(err.Error(), tt.wantErrStr) {
				t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
			}
		} else {
			t.Errorf("cli.run() unexpected error = %v", err)
		}
	} else if tt.wantErr != nil || tt.wantErrStr != "" {
		t.Errorf("cli.run() error = nil, want an error")
	}
	return err
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "export: no entity", args: []string{"export"}, wantErr: errHelp},
		{name: "export: bad format", args: []string{"export", "-entity", "students", "-format", "csv"}, wantErrStr: "unknown export format"},
		{name: "export: unknown entity", args: []string{"export", "-entity", "janitors"}, wantErrStr: listing.ErrUnknownEntity.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCLI(t, cli, tt)
		})
	}
}

func Test_commandLine_entities(t *testing.T) {
	cli, out := setup(t)
	require.NoError(t, cli.run([]string{"admin", "entities"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, len(school.Entities())+1)
	assert.Contains(t, out.String(), "/job-postings")
	assert.Contains(t, out.String(), "yes (confirmed)")
}

func Test_commandLine_ping(t *testing.T) {
	cli, out := setup(t)
	require.NoError(t, cli.run([]string{"admin", "ping"}))
	assert.Equal(t, "school API is up\n", out.String())

	cli.client = restapi.New(restapi.Options{BaseURL: "http://127.0.0.1:1"})
	assert.Error(t, cli.run([]string{"admin", "ping"}))
}

func Test_commandLine_export(t *testing.T) {
	defer func(orig func(int) bool) { isTerminalFunc = orig }(isTerminalFunc)
	dir := t.TempDir()

	type extra struct {
		terminal bool
		file     string
		prefix   string
	}
	tests := []cliTest{
		{
			name:  "pdf to stdout",
			args:  []string{"export", "-entity", "students", "-page", "2"},
			extra: extra{prefix: "%PDF"},
		},
		{
			name:    "binary to a terminal",
			args:    []string{"export", "-entity", "students"},
			wantErr: errTerminal,
			extra:   extra{terminal: true},
		},
		{
			name:  "xlsx to file",
			args:  []string{"export", "-entity", "students", "-format", "xlsx", "-o", filepath.Join(dir, "students.xlsx")},
			extra: extra{terminal: true, file: filepath.Join(dir, "students.xlsx")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			ex := tt.extra.(extra)
			isTerminalFunc = func(int) bool { return ex.terminal }
			if ex.terminal && ex.file == "" {
				cli.out = os.Stdout
			}

			if err := runCLI(t, cli, tt); err != nil {
				return
			}
			if ex.prefix != "" {
				assert.True(t, strings.HasPrefix(out.String(), ex.prefix))
			}
			if ex.file != "" {
				assert.Zero(t, out.Len())
				f, err := excelize.OpenFile(ex.file)
				require.NoError(t, err)
				defer f.Close()

				rows, err := f.GetRows("Students")
				require.NoError(t, err)
				require.Len(t, rows, 11) // header + one page
				assert.Equal(t, []string{"Name", "Email", "Class", "Roll number", "Status"}, rows[0])
				assert.Contains(t, []string{"Form 1", "Form 2"}, rows[1][2])
			}
		})
	}
}
