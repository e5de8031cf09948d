package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"safar/internal/config"
	"safar/internal/logger"
	"safar/internal/model"
	"safar/internal/utils"
)

// ProcessOracle runs the prediction script as a subprocess:
//
//	python predict.py <action> '<json payload>'
//
// and reads the JSON result from stdout.
type ProcessOracle struct {
	python  string
	script  string
	workDir string
	timeout time.Duration
	logger  *zap.Logger
}

// NewProcessOracle creates a subprocess oracle from configuration
func NewProcessOracle(cfg *config.OracleConfig, log *zap.Logger) *ProcessOracle {
	script := cfg.ScriptPath
	if abs, err := filepath.Abs(script); err == nil {
		script = abs
	}

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(script)
	}

	return &ProcessOracle{
		python:  cfg.PythonBin,
		script:  script,
		workDir: workDir,
		timeout: cfg.Timeout,
		logger:  logger.OrNop(log).Named("oracle.process"),
	}
}

// Name implements Oracle
func (p *ProcessOracle) Name() string {
	return SourceProcess
}

// Available reports whether the interpreter and the script both exist
func (p *ProcessOracle) Available() bool {
	if _, err := exec.LookPath(p.python); err != nil {
		return false
	}
	info, err := os.Stat(p.script)
	return err == nil && !info.IsDir()
}

// PredictBudget implements BudgetPredictor
func (p *ProcessOracle) PredictBudget(ctx context.Context, features FeatureSet) (float64, error) {
	raw, err := p.run(ctx, OpPredictBudget, features)
	if err != nil {
		return 0, err
	}
	return decodeBudget(raw)
}

// RecommendDestination implements DestinationRecommender
func (p *ProcessOracle) RecommendDestination(ctx context.Context, query VibeQuery) ([]model.Recommendation, error) {
	raw, err := p.run(ctx, OpRecommendDestination, query)
	if err != nil {
		return nil, err
	}
	return decodeRecommendations(raw)
}

func (p *ProcessOracle) run(ctx context.Context, action string, payload interface{}) ([]byte, error) {
	arg, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	// Arguments are passed directly, never through a shell
	cmd := exec.CommandContext(ctx, p.python, p.script, action, string(arg))
	cmd.Dir = p.workDir
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	p.logger.Debug("prediction script finished",
		zap.String("action", action),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s: %w", action, ctx.Err())
	}
	if err != nil {
		return nil, fmt.Errorf("%s: script failed: %w: %s", action, err, truncate(stderr.String(), 200))
	}

	raw, err := utils.ExtractJSON(stdout.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return raw, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
