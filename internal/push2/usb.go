package push2

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
	"periph.io/x/conn/v3"
)

const (
	VendorID  gousb.ID = 0x2982
	ProductID gousb.ID = 0x1967

	Interface = 0
	// Endpoint is the bulk OUT endpoint 0x01.
	Endpoint = 0x01

	DefaultTimeout = time.Second
)

// USBOpener opens the display through libusb.
type USBOpener struct {
	VendorID  gousb.ID
	ProductID gousb.ID
	Timeout   time.Duration
}

func NewUSBOpener(timeout time.Duration) *USBOpener {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &USBOpener{VendorID: VendorID, ProductID: ProductID, Timeout: timeout}
}

func (o *USBOpener) Open() (Link, error) {
	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(o.VendorID, o.ProductID)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("open %s:%s: %w", o.VendorID, o.ProductID, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, ErrDeviceNotFound
	}
	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("auto detach: %w", err)
	}
	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("%w: %v", ErrClaim, err)
	}
	intf, err := cfg.Interface(Interface, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("%w: %v", ErrClaim, err)
	}
	ep, err := intf.OutEndpoint(Endpoint)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("endpoint %#02x: %w", Endpoint, err)
	}
	return &usbLink{ctx: ctx, dev: dev, cfg: cfg, intf: intf, ep: ep, timeout: o.Timeout}, nil
}

type usbLink struct {
	ctx     *gousb.Context
	dev     *gousb.Device
	cfg     *gousb.Config
	intf    *gousb.Interface
	ep      *gousb.OutEndpoint
	timeout time.Duration
}

func (l *usbLink) String() string { return l.dev.String() }

func (l *usbLink) Duplex() conn.Duplex { return conn.Half }

// Tx performs one bulk OUT transfer of w. Reads are not supported.
func (l *usbLink) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("push2: bulk link is write only")
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	n, err := l.ep.WriteContext(ctx, w)
	if err != nil {
		return err
	}
	if n != len(w) {
		return fmt.Errorf("short transfer: %d of %d bytes", n, len(w))
	}
	return nil
}

func (l *usbLink) Close() error {
	l.intf.Close()
	return errors.Join(l.cfg.Close(), l.dev.Close(), l.ctx.Close())
}
