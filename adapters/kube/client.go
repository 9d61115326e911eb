package kube

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/version"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client wraps the typed clientset and the REST config it was built from.
type Client struct {
	// RESTConfig is the configuration used to talk to the API server.
	RESTConfig *rest.Config
	// Clientset provides typed clients for core/built-in resources.
	Clientset kubernetes.Interface
	// Source describes where RESTConfig came from ("in-cluster" or a kubeconfig path).
	Source string
}

// Options controls client construction. All fields are optional.
type Options struct {
	// Kubeconfig is an explicit kubeconfig path. Empty means $KUBECONFIG, then
	// ~/.kube/config, then in-cluster configuration.
	Kubeconfig string
	// Context selects a kubeconfig context.
	Context string
	// UserAgent adds a custom user agent to the REST config.
	UserAgent string
	// QPS sets the allowed queries per second on the REST client.
	QPS float32
	// Burst sets the client-side rate limiter burst.
	Burst int
}

func (o *Options) applyDefaults() {
	if o.QPS <= 0 {
		o.QPS = 20
	}
	if o.Burst <= 0 {
		o.Burst = 50
	}
}

// NewClient resolves a REST config and builds a Client.
func NewClient(opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	path := resolveKubeconfigPath(opts.Kubeconfig)

	var (
		cfg    *rest.Config
		source string
		err    error
	)
	if fi, errStat := os.Stat(path); path != "" && errStat == nil && !fi.IsDir() {
		rules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: path}
		overrides := &clientcmd.ConfigOverrides{}
		if opts.Context != "" {
			overrides.CurrentContext = opts.Context
		}
		cfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("build REST config from kubeconfig %s: %w", path, err)
		}
		source = path
	} else {
		if opts.Kubeconfig != "" {
			return nil, fmt.Errorf("kubeconfig %q not found", opts.Kubeconfig)
		}
		cfg, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("no kubeconfig found and in-cluster config failed: %w", err)
		}
		source = "in-cluster"
	}

	c, err := NewClientFromRESTConfig(cfg, opts)
	if err != nil {
		return nil, err
	}
	c.Source = source
	return c, nil
}

// NewClientFromRESTConfig constructs a Client from an existing rest.Config.
func NewClientFromRESTConfig(cfg *rest.Config, opts *Options) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("REST config is nil")
	}
	if opts == nil {
		opts = &Options{}
	}
	opts.applyDefaults()

	cfg.QPS = opts.QPS
	cfg.Burst = opts.Burst
	if opts.UserAgent != "" {
		_ = rest.AddUserAgent(cfg, opts.UserAgent)
	}

	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build clientset: %w", err)
	}
	return &Client{RESTConfig: cfg, Clientset: cs}, nil
}

// resolveKubeconfigPath expands ~ and falls back to $KUBECONFIG and ~/.kube/config.
func resolveKubeconfigPath(explicit string) string {
	path := explicit
	if path == "" {
		path = os.Getenv("KUBECONFIG")
	}
	if path == "" {
		if home, _ := os.UserHomeDir(); home != "" {
			path = filepath.Join(home, ".kube", "config")
		}
	}
	if strings.HasPrefix(path, "~") {
		if home, _ := os.UserHomeDir(); home != "" {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}

// ServerVersion returns the API server git version. The request is bound to
// ctx; discovery's own ServerVersion takes no context.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	disco := c.Clientset.Discovery()
	rc := disco.RESTClient()
	if rc == nil {
		// Fake clientsets have no REST client.
		v, err := disco.ServerVersion()
		if err != nil {
			return "", err
		}
		return v.GitVersion, nil
	}
	raw, err := rc.Get().AbsPath("/version").Do(ctx).Raw()
	if err != nil {
		return "", fmt.Errorf("get server version: %w", err)
	}
	var info version.Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return "", fmt.Errorf("decode server version: %w", err)
	}
	return info.GitVersion, nil
}

// Ping checks that the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ServerVersion(ctx)
	return err
}

// Name implements domain.HealthChecker.
func (c *Client) Name() string { return "kubernetes" }

// Check implements domain.HealthChecker.
func (c *Client) Check(ctx context.Context) error {
	if c == nil || c.Clientset == nil {
		return fmt.Errorf("kube client is not initialized")
	}
	return c.Ping(ctx)
}

// CanGetSecrets asks the API server whether the current identity may get Secrets in
// namespace. Used by the check command to surface RBAC gaps before serving.
func (c *Client) CanGetSecrets(ctx context.Context, namespace string) (bool, error) {
	review, err := c.Clientset.AuthorizationV1().SelfSubjectAccessReviews().Create(ctx, selfSubjectAccessReview(namespace), metav1.CreateOptions{})
	if err != nil {
		return false, fmt.Errorf("create selfsubjectaccessreview: %w", err)
	}
	return review.Status.Allowed, nil
}
