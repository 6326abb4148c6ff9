package config

import (
	"log/slog"

	"github.com/hotelops/intervention/pkg/service/broker"
	"github.com/hotelops/intervention/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Broker holds CLI flags for the AMQP notification publisher
type Broker struct {
	url      string
	exchange string
}

func (x *Broker) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "amqp-url",
			Usage:       "AMQP URL. Notification requests are published only when set",
			Category:    "Broker",
			Sources:     cli.EnvVars("INTERVENTION_AMQP_URL"),
			Destination: &x.url,
		},
		&cli.StringFlag{
			Name:        "amqp-exchange",
			Usage:       "Topic exchange receiving notification requests",
			Category:    "Broker",
			Value:       "intervention.notifications",
			Sources:     cli.EnvVars("INTERVENTION_AMQP_EXCHANGE"),
			Destination: &x.exchange,
		},
	}
}

func (x *Broker) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", x.url != ""),
		slog.String("exchange", x.exchange),
	)
}

// Configure connects the publisher. It returns nil without error when no
// URL is configured.
func (x *Broker) Configure() (*broker.Publisher, error) {
	if x.url == "" {
		logging.Default().Info("AMQP URL not configured, notification requests stay in the repository only")
		return nil, nil
	}

	pub, err := broker.NewPublisher(x.url, x.exchange)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect notification broker", goerr.V("exchange", x.exchange))
	}
	logging.Default().Info("Notification broker enabled", "exchange", x.exchange)
	return pub, nil
}
