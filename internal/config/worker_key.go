package config

type WorkerKeyStruct struct {
	PersistActivityLogQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistActivityLogQueue: "persist_activity_log_queue",
}
