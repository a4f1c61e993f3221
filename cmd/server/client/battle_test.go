package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-narrator/internal/errors"
)

func TestBattlePlayHelpIsTheCommandLongText(t *testing.T) {
	assert.Equal(t, battlePlayHelp, battlePlayCmd.Long)
	assert.NotNil(t, battlePlayCmd.RunE)
}

func TestBattleCommandLocalLines(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		line     string
		wantQuit bool
		wantCode errors.Code
	}{
		{name: "blank line", line: "   "},
		{name: "help", line: "help"},
		{name: "quit", line: "quit", wantQuit: true},
		{name: "exit", line: "exit", wantQuit: true},
		{name: "challenge without target", line: "challenge", wantCode: errors.CodeInvalidArgument},
		{name: "act without skill", line: "act", wantCode: errors.CodeInvalidArgument},
		{name: "unknown", line: "dance", wantCode: errors.CodeInvalidArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quit, err := battleCommand(ctx, nil, tc.line)
			assert.Equal(t, tc.wantQuit, quit)
			if tc.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.wantCode, errors.GetCode(err))
		})
	}
}
