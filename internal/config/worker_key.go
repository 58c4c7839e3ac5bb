package config

type WorkerKeyStruct struct {
	PersistResultsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistResultsQueue: "persist_practice_results_queue",
}
