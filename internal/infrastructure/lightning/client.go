package lightning

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/squeakroad/case-service/internal/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// lightningClient is the slice of lnrpc.LightningClient the case service uses.
type lightningClient interface {
	AddInvoice(ctx context.Context, in *lnrpc.Invoice, opts ...grpc.CallOption) (*lnrpc.AddInvoiceResponse, error)
	LookupInvoice(ctx context.Context, in *lnrpc.PaymentHash, opts ...grpc.CallOption) (*lnrpc.Invoice, error)
	SubscribeInvoices(ctx context.Context, in *lnrpc.InvoiceSubscription, opts ...grpc.CallOption) (lnrpc.Lightning_SubscribeInvoicesClient, error)
}

type macaroonCredential struct {
	macaroon string
}

func (m macaroonCredential) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"macaroon": m.macaroon}, nil
}

func (macaroonCredential) RequireTransportSecurity() bool {
	return true
}

// Client talks to an lnd node over gRPC.
type Client struct {
	conn          *grpc.ClientConn
	ln            lightningClient
	timeout       time.Duration
	invoiceExpiry time.Duration
	log           *slog.Logger
}

func NewClient(cfg *config.CaseConfig, log *slog.Logger) (*Client, error) {
	creds, err := credentials.NewClientTLSFromFile(cfg.Lightning.TLSCertPath, "")
	if err != nil {
		return nil, fmt.Errorf("load lnd tls cert: %w", err)
	}
	macaroon, err := os.ReadFile(cfg.Lightning.MacaroonPath)
	if err != nil {
		return nil, fmt.Errorf("read lnd macaroon: %w", err)
	}

	conn, err := grpc.NewClient(cfg.LightningAddr(),
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(macaroonCredential{macaroon: hex.EncodeToString(macaroon)}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial lnd: %w", err)
	}

	return &Client{
		conn:          conn,
		ln:            lnrpc.NewLightningClient(conn),
		timeout:       cfg.Lightning.InvoiceTimeout,
		invoiceExpiry: cfg.Market.InvoiceExpiry,
		log:           log,
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
