package cli

import (
	"fmt"
	"time"

	alertRepo "github.com/fekuna/omnipos-stockroom/internal/alert/repository"
	alertUC "github.com/fekuna/omnipos-stockroom/internal/alert/usecase"
	invRepo "github.com/fekuna/omnipos-stockroom/internal/inventory/repository"
	"github.com/fekuna/omnipos-stockroom/internal/notification"
	settingRepo "github.com/fekuna/omnipos-stockroom/internal/setting/repository"
	settingUC "github.com/fekuna/omnipos-stockroom/internal/setting/usecase"
	"github.com/spf13/cobra"
)

// NewExpiryScanCommand records one expiring alert per record inside its
// expiry window. Meant to run from cron.
func NewExpiryScanCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:          "expiry-scan",
		Short:        "Raise alerts for records that are expiring or expired",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rootOpts.openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			log := rootOpts.logger()
			cfg := rootOpts.cfg
			settings := settingUC.NewSettingUseCase(settingRepo.NewPGRepository(db), nil, 0, log)

			mailer := notification.NewSMTPMailer(notification.SMTPConfig{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
				From:     cfg.SMTP.From,
			}, log)
			dispatcher := notification.NewDispatcher(mailer, notification.Config{
				Workers:     1,
				QueueSize:   cfg.Notification.QueueSize,
				SendTimeout: cfg.Notification.SendTimeout,
			}, nil, log)
			defer dispatcher.Close()

			uc := alertUC.NewAlertUseCase(alertRepo.NewPGRepository(db), invRepo.NewPGRepository(db), settings, dispatcher, nil, log)
			now := time.Now().UTC()
			out := cmd.OutOrStdout()

			if dryRun {
				recs, err := uc.ListExpiring(cmd.Context(), now)
				if err != nil {
					return err
				}
				for _, r := range recs {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", r.Barcode, r.WarehouseName, r.ItemName, r.ExpireDate.Format("2006-01-02"))
				}
				fmt.Fprintf(out, "%d record(s) in expiry window\n", len(recs))
				return nil
			}

			alerts, err := uc.ScanExpiring(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "created %d expiring alert(s)\n", len(alerts))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list matching records without creating alerts")
	return cmd
}
