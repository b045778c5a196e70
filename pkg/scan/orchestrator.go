package scan

import (
	"sync"
	"time"

	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/pkg/provider"
	log "github.com/sirupsen/logrus"
)

type (
	//Orchestrator fans a single IP check out across the selected providers
	Orchestrator struct {
		executor *provider.Executor
		log      *log.Logger
	}

	//Options controls one IP check
	Options struct {
		Providers []string
		Timeout   time.Duration
		UseCache  bool
		Parallel  bool
	}
)

//NewOrchestrator creates an orchestrator on top of a provider executor
func NewOrchestrator(executor *provider.Executor, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		executor: executor,
		log:      logger,
	}
}

//CheckIP queries every selected provider for one IP and collects all of
//their results, successes and failures alike. When running in parallel the
//output carries no ordering guarantee: callers must key off the Provider
//field rather than the slice position.
func (o *Orchestrator) CheckIP(ip string, opts Options) []data.ProviderResult {
	if !opts.Parallel || len(opts.Providers) < 2 {
		return o.checkSequential(ip, opts)
	}
	return o.checkParallel(ip, opts)
}

//checkSequential invokes the providers strictly in the given fixed order
func (o *Orchestrator) checkSequential(ip string, opts Options) []data.ProviderResult {
	results := make([]data.ProviderResult, 0, len(opts.Providers))
	for _, name := range opts.Providers {
		results = append(results, o.executor.Execute(name, ip, opts.Timeout, opts.UseCache))
	}
	return results
}

//checkParallel launches every provider concurrently and waits for all of
//them to finish. A single slow or throttled provider never blocks
//collection of the others.
func (o *Orchestrator) checkParallel(ip string, opts Options) []data.ProviderResult {
	resultChannel := make(chan data.ProviderResult)

	var executeWg sync.WaitGroup
	for _, name := range opts.Providers {
		executeWg.Add(1)
		go func(name string) {
			defer executeWg.Done()
			resultChannel <- o.executor.Execute(name, ip, opts.Timeout, opts.UseCache)
		}(name)
	}

	var collectWg sync.WaitGroup
	collectWg.Add(1)
	results := make([]data.ProviderResult, 0, len(opts.Providers))
	go func() {
		defer collectWg.Done()
		for result := range resultChannel {
			if result.Errored() {
				o.log.WithFields(log.Fields{
					"provider": result.Provider,
					"ip":       ip,
					"error":    result.Error,
				}).Debug("Provider query failed")
			}
			results = append(results, result)
		}
	}()

	executeWg.Wait()
	close(resultChannel)
	collectWg.Wait()

	return results
}
