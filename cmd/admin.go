package cmd

import (
	"strings"

	"loans/core"

	"github.com/spf13/cobra"
)

var addAssetCmd = &cobra.Command{
	Use:     "add-asset",
	Aliases: []string{"aa"},
	Short:   "register an asset",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		eng := provideEngine(database)

		symbol, e := cmd.Flags().GetString("symbol")
		if e != nil || symbol == "" {
			panic("invalid symbol")
		}
		assetID, _ := cmd.Flags().GetString("asset")
		collateral, _ := cmd.Flags().GetBool("collateral")
		borrowable, _ := cmd.Flags().GetBool("borrowable")

		asset := &core.Asset{
			Symbol:       strings.ToUpper(symbol),
			AssetID:      assetID,
			IsCollateral: collateral,
			IsBorrowable: borrowable,
		}

		if err := eng.AddAsset(ctx, adminCaller(), asset); err != nil {
			cmd.PrintErrln("add asset error:", err)
			return
		}

		cmd.Println("asset added:", asset.Symbol)
	},
}

var toggleAssetCmd = &cobra.Command{
	Use:     "toggle-asset",
	Aliases: []string{"ta"},
	Short:   "flip an asset's active flag",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		eng := provideEngine(database)

		symbol, e := cmd.Flags().GetString("symbol")
		if e != nil || symbol == "" {
			panic("invalid symbol")
		}

		if err := eng.ToggleActive(ctx, adminCaller(), strings.ToUpper(symbol)); err != nil {
			cmd.PrintErrln("toggle asset error:", err)
			return
		}

		cmd.Println("asset toggled:", strings.ToUpper(symbol))
	},
}

var setParamCmd = &cobra.Command{
	Use:     "set-param",
	Aliases: []string{"sp"},
	Short:   "set a ledger parameter",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		eng := provideEngine(database)

		key, e := cmd.Flags().GetString("key")
		if e != nil || key == "" {
			panic("invalid key")
		}
		value, e := cmd.Flags().GetString("value")
		if e != nil || value == "" {
			panic("invalid value")
		}

		if err := eng.SetParam(ctx, adminCaller(), key, value); err != nil {
			cmd.PrintErrln("set param error:", err)
			return
		}

		cmd.Println("param set:", key, "=", value)
	},
}

func init() {
	addAssetCmd.Flags().StringP("symbol", "s", "", "asset symbol")
	addAssetCmd.Flags().StringP("asset", "a", "", "external asset id")
	addAssetCmd.Flags().BoolP("collateral", "c", false, "accept as collateral")
	addAssetCmd.Flags().BoolP("borrowable", "b", false, "allow borrowing")

	toggleAssetCmd.Flags().StringP("symbol", "s", "", "asset symbol")

	setParamCmd.Flags().StringP("key", "k", "", "parameter name")
	setParamCmd.Flags().StringP("value", "v", "", "parameter value")

	rootCmd.AddCommand(addAssetCmd)
	rootCmd.AddCommand(toggleAssetCmd)
	rootCmd.AddCommand(setParamCmd)
}
