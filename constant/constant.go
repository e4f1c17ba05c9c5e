package constant

type StreamStatus string

const (
	StreamStatusProcessing StreamStatus = "processing"
	StreamStatusReady      StreamStatus = "ready"
	StreamStatusFailed     StreamStatus = "failed"
)

func (s StreamStatus) String() string {
	return string(s)
}

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
