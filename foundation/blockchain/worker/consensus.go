package worker

// consensusOperations handles running the longest chain rule against the
// known peers.
func (w *Worker) consensusOperations() {
	w.evHandler("worker: consensusOperations: G started")
	defer w.evHandler("worker: consensusOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runConsensusOperation()
			}
		case <-w.resolve:
			if !w.isShutdown() {
				w.runConsensusOperation()
			}
		case <-w.shut:
			w.evHandler("worker: consensusOperations: received shut signal")
			return
		}
	}
}

// runConsensusOperation replaces the local chain if a peer holds a longer
// valid one.
func (w *Worker) runConsensusOperation() {
	w.evHandler("worker: runConsensusOperation: started")
	defer w.evHandler("worker: runConsensusOperation: completed")

	if len(w.state.RetrieveKnownPeers()) == 0 {
		w.evHandler("worker: runConsensusOperation: no known peers")
		return
	}

	replaced, err := w.state.Resolve(w.ctx)
	if err != nil {
		w.evHandler("worker: runConsensusOperation: ERROR: %s", err)
		return
	}

	w.evHandler("worker: runConsensusOperation: replaced[%t]", replaced)
}
