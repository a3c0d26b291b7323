// Package batch runs many scan fetches at once.
//
// A Runner turns a range of identifiers, a parsed listing or an explicit
// list of targets into fetches, runs them over a bounded worker pool and
// waits for all of them. Every target ends with its own outcome; one
// failing identifier never cancels the others.
//
// Usage:
//
//	cfg, _ := config.Load("", nil)
//	store, _ := storage.Open(ctx, cfg.Output)
//	defer store.Close()
//
//	runner := batch.New(cfg, store, logger.GetLogger())
//	results, err := runner.RunRange(ctx, "KLAC01462000001", "KLAC01462000079", "30")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(batch.Summarize(results))
package batch
