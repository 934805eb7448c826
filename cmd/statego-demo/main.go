// Command statego-demo is the bring-up binary: sys_init/sys_start, a
// producer task, a consumer task, the idle task, all wired to real
// time via kernel/port's tick source.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/brutella/dnssd"
	"github.com/spf13/pflag"

	"github.com/kernelsim/statego/config"
	"github.com/kernelsim/statego/internal/console"
	"github.com/kernelsim/statego/kernel"
	"github.com/kernelsim/statego/kernel/port"
	"github.com/kernelsim/statego/klog"
	"github.com/kernelsim/statego/msgbuf"
)

const dnssdServiceType = "_statego-console._tcp"

func main() {
	cfg := config.Default()
	apply := config.Flags(pflag.CommandLine)
	pflag.Parse()
	apply(&cfg)

	logger := klog.Default()
	k := kernel.New(kernel.WithLogger(logger.KernelSink()))

	buf := msgbuf.New(k, cfg.BufferLimit)

	for _, p := range cfg.Producers {
		spawnProducer(k, buf, p)
	}
	for _, c := range cfg.Consumers {
		spawnConsumer(k, buf, c, logger)
	}

	var tick port.TickSource = port.NewTickerSource(cfg.TickPeriod)
	if runtime.GOOS == "linux" {
		if lts, err := port.NewLinuxTickSource(cfg.TickPeriod); err == nil {
			tick = lts
		}
	}
	go tick.Run(k)

	if cfg.ConsolePath != "" || cfg.Advertise {
		c, err := console.Open(buf)
		if err != nil {
			logger.Errorf("console: open failed: %v", err)
		} else {
			logger.Infof("console: listening at %s", c.SlaveName())
			if cfg.ConsolePath != "" {
				if err := os.Symlink(c.SlaveName(), cfg.ConsolePath); err != nil {
					logger.Errorf("console: link %s: %v", cfg.ConsolePath, err)
				}
			}
			if cfg.Advertise {
				advertiseConsole(logger, c.SlaveName())
			}
		}
	}

	logger.Infof("statego-demo: starting scheduler")
	k.Start()
}

func spawnProducer(k *kernel.Kernel, buf *msgbuf.Buffer, spec config.TaskSpec) {
	t := k.Spawn(spec.Name, func(c kernel.Context) {
		for i := 0; ; i++ {
			msg := []byte(fmt.Sprintf("tick from %s #%d", spec.Name, i))
			buf.Send(c, msg, kernel.Infinite)
			c.SleepFor(kernel.Duration(100))
		}
	}, nil, spec.Priority)
	t.Start()
}

func spawnConsumer(k *kernel.Kernel, buf *msgbuf.Buffer, spec config.TaskSpec, logger *klog.Logger) {
	t := k.Spawn(spec.Name, func(c kernel.Context) {
		dst := make([]byte, 256)
		for {
			n := buf.Wait(c, dst, kernel.Infinite)
			if n < 0 {
				return
			}
			logger.Infof("%s: %s", spec.Name, string(dst[:n]))
		}
	}, nil, spec.Priority)
	t.Start()
}

func advertiseConsole(logger *klog.Logger, slaveName string) {
	cfg := dnssd.Config{
		Name: "statego-console",
		Type: dnssdServiceType,
		Port: 0,
		Text: map[string]string{"path": slaveName},
	}
	svc, err := dnssd.NewService(cfg)
	if err != nil {
		logger.Errorf("dnssd: create service: %v", err)
		return
	}
	rp, err := dnssd.NewResponder()
	if err != nil {
		logger.Errorf("dnssd: create responder: %v", err)
		return
	}
	if _, err := rp.Add(svc); err != nil {
		logger.Errorf("dnssd: add service: %v", err)
		return
	}
	go func() {
		if err := rp.Respond(context.Background()); err != nil {
			logger.Errorf("dnssd: responder: %v", err)
		}
	}()
}
