package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:   	Announce the metrics endpoint using DNS-SD
 *
 * Description:
 *
 *     A receiver tucked away in a loft is easier to find if it
 *     announces itself.  Prometheus service discovery and the usual
 *     mDNS browsers will see it as _prometheus-http._tcp.
 *
 *     This uses the pure-Go github.com/brutella/dnssd package, no
 *     system daemon needed.
 */

import (
	"context"
	"os"
	"strings"

	"github.com/brutella/dnssd"
)

const DNS_SD_SERVICE = "_prometheus-http._tcp"

/* "dump1030 on <hostname>", or just "dump1030" without a hostname. */
func dnsSDDefaultName() string {
	var hostname, err = os.Hostname()
	if err != nil {
		return "dump1030"
	}

	// on some systems, an FQDN is returned; remove domain part
	hostname, _, _ = strings.Cut(hostname, ".")

	return "dump1030 on " + hostname
}

func dnsSDAnnounce(ctx context.Context, name string, port int) {
	if name == "" {
		name = dnsSDDefaultName()
	}

	var cfg = dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: DNS_SD_SERVICE,
		Port: port,
	}

	var sv, svErr = dnssd.NewService(cfg)
	if svErr != nil {
		logger.Error("DNS-SD: failed to create service", "err", svErr)

		return
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		logger.Error("DNS-SD: failed to create responder", "err", rpErr)

		return
	}

	var _, addErr = rp.Add(sv)
	if addErr != nil {
		logger.Error("DNS-SD: failed to add service", "err", addErr)

		return
	}

	logger.Info("DNS-SD: announcing metrics", "port", port, "name", name)

	go func() {
		var respondErr = rp.Respond(ctx)
		if respondErr != nil && ctx.Err() == nil {
			logger.Error("DNS-SD: responder error", "err", respondErr)
		}
	}()
}
