package main

import (
	"flag"
	"log"

	"github.com/saaj376/SafeTrace/pkg/graphloader"
	"github.com/saaj376/SafeTrace/pkg/osmparser"
)

var (
	mapFile = flag.String("f", "chennai.osm.pbf", "openstreetmap extract to build the road network from")
	outFile = flag.String("o", "./data/network.graph", "output graph file")
)

func main() {
	flag.Parse()

	log.Printf("reading osm file %s", *mapFile)
	parser := osmparser.NewParser()
	graph, err := parser.Parse(*mapFile)
	if err != nil {
		log.Fatal(err)
	}

	graph, err = osmparser.LargestConnectedComponent(graph)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("saving road network graph to %s", *outFile)
	if err := graphloader.SaveGraph(graph, *outFile); err != nil {
		log.Fatal(err)
	}
	log.Printf("done: %d nodes, %d edges", graph.NumNodes(), graph.NumEdges())
}
