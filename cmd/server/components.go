package main

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sampcore/pkg/component/actors"
	"github.com/opd-ai/sampcore/pkg/component/checkpoints"
	"github.com/opd-ai/sampcore/pkg/component/classes"
	"github.com/opd-ai/sampcore/pkg/component/dialogs"
	"github.com/opd-ai/sampcore/pkg/component/gangzones"
	"github.com/opd-ai/sampcore/pkg/component/objects"
	"github.com/opd-ai/sampcore/pkg/component/pickups"
	"github.com/opd-ai/sampcore/pkg/component/textlabels"
	"github.com/opd-ai/sampcore/pkg/component/vehicles"
	"github.com/opd-ai/sampcore/pkg/config"
	"github.com/opd-ai/sampcore/pkg/core"
	"github.com/opd-ai/sampcore/pkg/streaming"
)

// The gameplay packages wire themselves into a *core.Core as soon as
// their New constructor runs (registering input handlers and per-player
// updates immediately), unlike the original's dlopen'd components whose
// onLoad ran later against a shared singleton. These thin adapters exist
// only so the fixed module list can go through component.Manifest's
// ordered load/continue-on-failure and reverse-order free, matching
// original_source/Server/Source/component_loader.hpp's loadComponents
// shape even though construction here can't actually fail.

func streamConfig(cfg config.Config, mode streaming.Mode) streaming.Config {
	return streaming.Config{StreamDistance: cfg.StreamDistance, DistanceMode: mode}
}

type actorsComponent struct {
	logger *logrus.Entry
	I      *actors.Component
}

func (a *actorsComponent) Name() string  { return "actors" }
func (a *actorsComponent) UID() uint64   { return 0x8cc7dccb }
func (a *actorsComponent) OnFree()       {}
func (a *actorsComponent) OnLoad(c *core.Core) error {
	cfg := c.Config()
	a.I = actors.New(c, cfg.MaxPlayers, streamConfig(cfg, streaming.Mode3D), cfg.ValidateAnimations, nil, a.logger)
	return nil
}

type vehiclesComponent struct {
	logger       *logrus.Entry
	respawnDelay time.Duration
	I            *vehicles.Component
}

func (v *vehiclesComponent) Name() string { return "vehicles" }
func (v *vehiclesComponent) UID() uint64  { return 0x3a2b9f11 }
func (v *vehiclesComponent) OnFree()      {}
func (v *vehiclesComponent) OnLoad(c *core.Core) error {
	cfg := c.Config()
	if v.respawnDelay == 0 {
		v.respawnDelay = 10 * time.Second
	}
	v.I = vehicles.New(c, cfg.MaxPlayers*2, streamConfig(cfg, streaming.Mode2D), v.respawnDelay, v.logger)
	return nil
}

type pickupsComponent struct {
	logger *logrus.Entry
	I      *pickups.Component
}

func (p *pickupsComponent) Name() string { return "pickups" }
func (p *pickupsComponent) UID() uint64  { return 0x5d41e0c2 }
func (p *pickupsComponent) OnFree()      {}
func (p *pickupsComponent) OnLoad(c *core.Core) error {
	cfg := c.Config()
	p.I = pickups.New(c, cfg.MaxPlayers*4, streamConfig(cfg, streaming.Mode3D), p.logger)
	return nil
}

type textlabelsComponent struct {
	logger *logrus.Entry
	I      *textlabels.Component
}

func (t *textlabelsComponent) Name() string { return "textlabels" }
func (t *textlabelsComponent) UID() uint64  { return 0x1f9a4b70 }
func (t *textlabelsComponent) OnFree()      {}
func (t *textlabelsComponent) OnLoad(c *core.Core) error {
	cfg := c.Config()
	t.I = textlabels.New(c, cfg.MaxPlayers*4, streamConfig(cfg, streaming.Mode3D), t.logger)
	return nil
}

type gangzonesComponent struct {
	logger *logrus.Entry
	I      *gangzones.Component
}

func (g *gangzonesComponent) Name() string { return "gangzones" }
func (g *gangzonesComponent) UID() uint64  { return 0x6b8e2d44 }
func (g *gangzonesComponent) OnFree()      {}
func (g *gangzonesComponent) OnLoad(c *core.Core) error {
	g.I = gangzones.New(c, 1024, g.logger)
	return nil
}

type objectsComponent struct {
	logger *logrus.Entry
	I      *objects.Component
}

func (o *objectsComponent) Name() string { return "objects" }
func (o *objectsComponent) UID() uint64  { return 0x2e77c913 }
func (o *objectsComponent) OnFree()      {}
func (o *objectsComponent) OnLoad(c *core.Core) error {
	cfg := c.Config()
	o.I = objects.New(c, cfg.MaxPlayers*20, streamConfig(cfg, streaming.Mode3D), o.logger)
	return nil
}

type checkpointsComponent struct {
	I *checkpoints.Component
}

func (k *checkpointsComponent) Name() string { return "checkpoints" }
func (k *checkpointsComponent) UID() uint64  { return 0x9044a1d8 }
func (k *checkpointsComponent) OnFree()      {}
func (k *checkpointsComponent) OnLoad(c *core.Core) error {
	k.I = checkpoints.New(c)
	return nil
}

type classesComponent struct {
	logger *logrus.Entry
	I      *classes.Component
}

func (k *classesComponent) Name() string { return "classes" }
func (k *classesComponent) UID() uint64  { return 0x4457bb02 }
func (k *classesComponent) OnFree()      {}
func (k *classesComponent) OnLoad(c *core.Core) error {
	k.I = classes.New(c, 320, k.logger)
	return nil
}

type dialogsComponent struct {
	logger *logrus.Entry
	I      *dialogs.Component
}

func (d *dialogsComponent) Name() string { return "dialogs" }
func (d *dialogsComponent) UID() uint64  { return 0x7c119a5e }
func (d *dialogsComponent) OnFree()      {}
func (d *dialogsComponent) OnLoad(c *core.Core) error {
	d.I = dialogs.New(c, d.logger)
	return nil
}
