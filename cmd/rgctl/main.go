package main

import (
	"context"
	"io/ioutil"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	yaml "gopkg.in/yaml.v2"

	"github.com/palantircloud/resourcegroups/executor"
	"github.com/palantircloud/resourcegroups/internal/config"
	"github.com/palantircloud/resourcegroups/internal/lifecycle"
	"github.com/palantircloud/resourcegroups/internal/simulate"
	"github.com/palantircloud/resourcegroups/resourcegroup"
	"github.com/palantircloud/resourcegroups/scalar"
)

var (
	app = kingpin.New("rgctl", "Resource-group admission and scheduling demo")

	debug = app.Flag(
		"debug", "enable debug logging").
		Short('d').
		Default("false").
		Envar("ENABLE_DEBUG_LOGGING").
		Bool()

	configFile = app.Flag(
		"config", "YAML resource-group tree config").
		Short('c').
		Required().
		ExistingFile()

	tickInterval = app.Flag(
		"tick-interval", "how often to run the admission driver tick").
		Default("200ms").
		Duration()

	workers = app.Flag(
		"workers", "max concurrent query-start workers").
		Default("4").
		Int()

	submissionRate = app.Flag(
		"submission-interval", "how often the simulator submits a new query").
		Default("50ms").
		Duration()

	submissionGroup = app.Flag(
		"submission-group", "dotted path of the leaf group queries are submitted to").
		Required().
		String()
)

func main() {
	app.HelpFlag.Short('h')
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	raw, err := ioutil.ReadFile(*configFile)
	if err != nil {
		log.WithError(err).Fatal("rgctl: cannot read config file")
	}

	var tree config.RootConfig
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		log.WithError(err).Fatal("rgctl: cannot parse config file")
	}

	pool := executor.New(executor.Options{MaxWorkers: *workers})
	defer pool.Stop()

	root, err := config.Build(tree, pool, tally.NoopScope)
	if err != nil {
		log.WithError(err).Warn("rgctl: some groups failed to build, continuing with what did")
	}
	if root == nil {
		log.Fatal("rgctl: root group failed to build, nothing to run")
	}

	target, err := findGroup(root.Group, *submissionGroup)
	if err != nil {
		log.WithError(err).WithField("group", *submissionGroup).Fatal("rgctl: submission group not found")
	}

	driver := lifecycle.New()
	driver.Start()
	go runDriver(driver, root, *tickInterval)

	submitter := lifecycle.New()
	submitter.Start()
	go runSubmissions(submitter, target, *submissionRate)

	log.WithFields(log.Fields{
		"group":   *submissionGroup,
		"tick":    tickInterval.String(),
		"workers": *workers,
	}).Info("rgctl: running, press ctrl-c to stop")

	<-make(chan struct{}) // run until killed
}

// findGroup resolves a dotted path of sub-group names, relative to
// root, against the already-built tree. Each segment is fetched via
// GetOrCreateSubGroup: for a segment the config already built, the
// limits passed here are ignored. A segment that does not exist is not
// reported as missing; it is created with all limits set to zero.
func findGroup(root *resourcegroup.Group, dottedPath string) (*resourcegroup.Group, error) {
	g := root
	for _, segment := range strings.Split(dottedPath, ".") {
		if segment == "" || segment == root.Name() {
			continue
		}
		child, err := g.GetOrCreateSubGroup(segment, 0, 0, 0)
		if err != nil {
			return nil, err
		}
		g = child
	}
	return g, nil
}

func runDriver(lc lifecycle.LifeCycle, root *resourcegroup.Root, interval time.Duration) {
	defer lc.StopComplete()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-lc.StopCh():
			return
		case <-ticker.C:
			root.ProcessQueuedQueries(context.Background())
		}
	}
}

func runSubmissions(lc lifecycle.LifeCycle, target *resourcegroup.Group, interval time.Duration) {
	defer lc.StopComplete()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var submitted scalar.Usage
	for {
		select {
		case <-lc.StopCh():
			return
		case <-ticker.C:
			q := simulate.New(simulate.Options{
				MemoryBytes: 64 << 20,
				CPUMillis:   100,
				MinRuntime:  500 * time.Millisecond,
				MaxRuntime:  3 * time.Second,
			})
			accepted, err := target.Add(context.Background(), q)
			if err != nil {
				log.WithError(err).Error("rgctl: admission error")
				continue
			}
			submitted = submitted.Add(q.Usage())
			log.WithFields(log.Fields{
				"query":             q.ID(),
				"accepted":          accepted,
				"cumulativeCPUMs":   submitted.CPUMillis,
				"cumulativeMemByte": submitted.MemoryBytes,
			}).Debug("rgctl: submitted query")
		}
	}
}
