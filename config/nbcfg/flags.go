package nbcfg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

const (
	flagListen       = "listen"
	flagWebhookPath  = "webhook-path"
	flagKubeconfig   = "kubeconfig"
	flagKubeContext  = "kube-context"
	flagBalancerID   = "nodebalancer-id"
	flagConfigID     = "https-config-id"
	flagTokenFile    = "linode-token-file"
	flagAPIURL       = "linode-api-url"
	flagFetchTimeout = "fetch-timeout"
	flagPushTimeout  = "push-timeout"
	flagDedupTTL     = "dedup-ttl"
)

// BindFlags registers the configuration flags on fs. Flags left unset do not
// override file or environment values; see ApplyFlags.
func BindFlags(fs *pflag.FlagSet) {
	fs.String(flagListen, "", "Listen address (env PORT sets :<port>) (default \":8080\")")
	fs.String(flagWebhookPath, "", "Trigger route (env WEBHOOK_PATH) (default \"/update-nodebalancer-cert\")")
	fs.String(flagKubeconfig, "", "Path to kubeconfig (default $KUBECONFIG, ~/.kube/config, then in-cluster)")
	fs.String(flagKubeContext, "", "Kubeconfig context")
	fs.String(flagBalancerID, "", "NodeBalancer ID (env NODEBALANCER_ID)")
	fs.String(flagConfigID, "", "NodeBalancer HTTPS config ID (env HTTPS_CONFIG_ID)")
	fs.String(flagTokenFile, "", "File holding the Linode API token (env LINODE_TOKEN_FILE)")
	fs.String(flagAPIURL, "", "Linode API base URL (env LINODE_API_URL)")
	fs.Duration(flagFetchTimeout, 0, "Per-read Secret fetch timeout (default 10s)")
	fs.Duration(flagPushTimeout, 0, "Per-call provider API timeout (default 30s)")
	fs.Duration(flagDedupTTL, 0, "Skip re-pushing identical material within this window (env DEDUP_TTL, 0 disables)")
}

// ApplyFlags overlays the flags that were set explicitly on fs.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case flagListen:
			c.Server.Addr = v
		case flagWebhookPath:
			c.Server.WebhookPath = v
		case flagKubeconfig:
			c.Kube.Kubeconfig = v
		case flagKubeContext:
			c.Kube.Context = v
		case flagBalancerID:
			c.Balancer.ID = v
		case flagConfigID:
			c.Balancer.ConfigID = v
		case flagTokenFile:
			c.Balancer.TokenFile = v
		case flagAPIURL:
			c.Balancer.APIURL = v
		case flagFetchTimeout:
			c.Sync.FetchTimeout, err = fs.GetDuration(f.Name)
		case flagPushTimeout:
			c.Balancer.Timeout, err = fs.GetDuration(f.Name)
		case flagDedupTTL:
			c.Sync.DedupTTL, err = fs.GetDuration(f.Name)
		}
	})
	return err
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration %q", v)
}
