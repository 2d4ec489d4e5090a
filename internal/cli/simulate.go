package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	simulateSymbol  string
	simulateTarget  float64
	simulateCurrent float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次触发并推送告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateTarget <= 0 || simulateCurrent <= 0 {
			return errors.New("--target 与 --current 必须大于 0")
		}

		target := decimal.NewFromFloat(simulateTarget)
		current := decimal.NewFromFloat(simulateCurrent)
		return getApp().SimulateAlert(cmd.Context(), simulateSymbol, target, current)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateSymbol, "symbol", "BTCUSDT", "告警符号")
	simulateCmd.Flags().Float64Var(&simulateTarget, "target", 0, "目标价格")
	simulateCmd.Flags().Float64Var(&simulateCurrent, "current", 0, "当前价格")
}
