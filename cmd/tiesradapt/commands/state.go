package commands

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/proegssilb/tiesr-dialer-sub000/adaptstate"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset persisted adaptation state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Print a stored state (default key from state.key)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		key := stateKey(args)
		st, err := adaptstate.Load(cmd.Context(), store, key)
		if errors.Is(err, adaptstate.ErrNotFound) {
			return fmt.Errorf("no state stored under %q", key)
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Key:\t%s\n", key)
		fmt.Fprintf(w, "Version:\t%d\n", st.Version)
		fmt.Fprintf(w, "MFCC:\t%d\n", st.NMFCC)
		fmt.Fprintf(w, "Channel (log_H, Q9):\t%v\n", st.LogH)
		fmt.Fprintf(w, "Variance scales (Q9):\t%v\n", st.LogVarRho)
		fmt.Fprintf(w, "Mean energy (Q9):\t%d (previous %d)\n", st.MeanEn, st.PrevMeanEn)
		fmt.Fprintf(w, "Cursor:\t%d, %d cycles\n", st.CursorIndex, st.Cycles)
		return w.Flush()
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear [key]",
	Short: "Delete a stored state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		key := stateKey(args)
		if err := store.Delete(cmd.Context(), key); err != nil {
			return err
		}
		fmt.Printf("Cleared state %q\n", key)
		return nil
	},
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys (badger backend)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		b, ok := store.(*adaptstate.BadgerStore)
		if !ok {
			return fmt.Errorf("state list needs the badger backend")
		}
		keys, err := b.Keys(cmd.Context())
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	},
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateClearCmd)
	stateCmd.AddCommand(stateListCmd)
}

func stateKey(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.State.Key
}
