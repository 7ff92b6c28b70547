package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"matscholar.com/ner/api"
	"matscholar.com/ner/logger"
	"matscholar.com/ner/ner"
	"matscholar.com/ner/pipeline"
	"matscholar.com/ner/worker"
)

type Config struct {
	RestAPIActive bool   `envconfig:"MAT_NER_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"MAT_NER_REST_API_PORT" default:"10000"`
}

const classifierStartMaxRetries = 5

func main() {
	logger.SetupLogging()
	mainLogger := logger.NewLogger("Main")
	fatalErrLogger := mainLogger.Fatal().Caller()
	saveModelDir := flag.String("save-model", "", "export an inference-ready model artifact to the given directory and exit")
	flag.Parse()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	// export-only run
	if *saveModelDir != "" {
		classifier, err := ner.NewClassifier()
		if err != nil {
			fatalErrLogger.Err(err).Msg("Failed to initialize classifier for export")
			os.Exit(1)
		}
		defer func() {
			_ = classifier.CloseSession()
		}()
		if err := classifier.SaveModel(*saveModelDir); err != nil {
			fatalErrLogger.Err(err).Str("save_dir", *saveModelDir).Msg("Failed to export model")
			os.Exit(1)
		}
		mainLogger.Info().Str("save_dir", *saveModelDir).Msg("Model exported. Exit...")
		return
	}

	// load classifier
	classifierChannel := make(chan *ner.Classifier)
	go func() {
		for retry := 0; retry < classifierStartMaxRetries; retry++ {
			classifier, err := ner.NewClassifier()
			if err != nil {
				mainLogger.Err(err).Msg("Failed to initialize NER classifier. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			mainLogger.Info().Msg("NER classifier loaded")
			classifierChannel <- classifier
			return
		}
		fatalErrLogger.Msg("Could not start classifier after 5 retries, exiting")
		os.Exit(1)
	}()

	// block until the classifier loads
	classifier := <-classifierChannel
	ppln := pipeline.NewNERPipeline(classifier)

	if config.RestAPIActive {
		go func() {
			mainLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Pipeline: ppln,
			}
			http.HandleFunc("/", apiRequest.ProcessData)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			mainLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}()
	}

	mainLogger.Info().Msg("Start NER Worker")
	for {
		rmqWorker, err := worker.New(ppln)
		if err != nil {
			mainLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			mainLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}
