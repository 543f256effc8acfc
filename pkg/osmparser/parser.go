package osmparser

import (
	"context"
	"io"
	"log"
	"os"
	"sort"

	"github.com/saaj376/SafeTrace/pkg/datastructure"
	"github.com/saaj376/SafeTrace/pkg/geo"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// walkSpeedKmh is the assumed pedestrian speed per road class. Classes not
// listed here are skipped entirely.
var walkSpeedKmh = map[string]float64{
	"residential":   5.0,
	"living_street": 5.0,
	"pedestrian":    5.0,
	"footway":       5.0,
	"path":          4.5,
	"steps":         2.5,
	"service":       5.0,
	"unclassified":  5.0,
	"tertiary":      5.0,
	"secondary":     4.8,
	"primary":       4.5,
	"trunk":         4.0,
}

type nodeCoord struct {
	lat float64
	lon float64
}

// Parser builds a bidirectional walking graph from an OpenStreetMap extract.
type Parser struct {
	wayNodes  map[int64]struct{}
	coords    map[int64]nodeCoord
	nodeIDMap map[int64]int32
}

func NewParser() *Parser {
	return &Parser{
		wayNodes:  make(map[int64]struct{}),
		coords:    make(map[int64]nodeCoord),
		nodeIDMap: make(map[int64]int32),
	}
}

func acceptWay(way *osm.Way) (string, bool) {
	if len(way.Nodes) < 2 {
		return "", false
	}
	highway := way.Tags.Find("highway")
	if highway == "" {
		return "", false
	}
	if _, ok := walkSpeedKmh[highway]; !ok {
		return "", false
	}
	if way.Tags.Find("foot") == "no" || way.Tags.Find("access") == "private" {
		return "", false
	}
	return highway, true
}

// Parse scans the pbf twice: first marking the node ids of accepted ways,
// then collecting those nodes' coordinates and emitting edges. The scans
// must not run in parallel, way order matters for dense edge ids.
func (p *Parser) Parse(mapFile string) (*datastructure.Graph, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 0)
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)
		if _, ok := acceptWay(way); !ok {
			continue
		}
		if (countWays+1)%50000 == 0 {
			log.Printf("reading openstreetmap ways: %d...", countWays+1)
		}
		countWays++
		for _, n := range way.Nodes {
			p.wayNodes[int64(n.ID)] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, err
	}
	scanner.Close()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	scanner = osmpbf.New(context.Background(), f, 0)
	defer scanner.Close()

	roadClasses, classID := buildRoadClassTable()
	nodes := make([]datastructure.Node, 0)
	edges := make([]datastructure.Edge, 0)

	countNodes := 0
	for scanner.Scan() {
		o := scanner.Object()
		switch o.ObjectID().Type() {
		case osm.TypeNode:
			n := o.(*osm.Node)
			if _, ok := p.wayNodes[int64(n.ID)]; !ok {
				continue
			}
			if (countNodes+1)%500000 == 0 {
				log.Printf("reading openstreetmap nodes: %d...", countNodes+1)
			}
			countNodes++
			p.coords[int64(n.ID)] = nodeCoord{lat: n.Lat, lon: n.Lon}
		case osm.TypeWay:
			way := o.(*osm.Way)
			highway, ok := acceptWay(way)
			if !ok {
				continue
			}
			p.processWay(way, classID[highway], &nodes, &edges)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	log.Printf("parsed %d nodes and %d edges from %s", len(nodes), len(edges), mapFile)
	return datastructure.NewGraph(nodes, edges, roadClasses)
}

func buildRoadClassTable() ([]string, map[string]uint8) {
	classes := make([]string, 0, len(walkSpeedKmh))
	for class := range walkSpeedKmh {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	classID := make(map[string]uint8, len(classes))
	for i, class := range classes {
		classID[class] = uint8(i)
	}
	return classes, classID
}

// processWay emits one edge pair per consecutive node pair. Walking ignores
// oneway restrictions.
func (p *Parser) processWay(way *osm.Way, roadClass uint8,
	nodes *[]datastructure.Node, edges *[]datastructure.Edge) {

	speed := walkSpeedKmh[way.Tags.Find("highway")]

	for i := 0; i+1 < len(way.Nodes); i++ {
		fromOsm := int64(way.Nodes[i].ID)
		toOsm := int64(way.Nodes[i+1].ID)

		fromCoord, okFrom := p.coords[fromOsm]
		toCoord, okTo := p.coords[toOsm]
		if !okFrom || !okTo {
			// node outside the extract's bounding box
			continue
		}

		from := p.internNode(fromOsm, fromCoord, nodes)
		to := p.internNode(toOsm, toCoord, nodes)
		if from == to {
			continue
		}

		distKm := geo.CalculateHaversineDistance(fromCoord.lat, fromCoord.lon, toCoord.lat, toCoord.lon)
		costSec := distKm / speed * 3600.0

		*edges = append(*edges,
			datastructure.NewEdge(int32(len(*edges)), from, to, costSec, distKm, roadClass),
			datastructure.NewEdge(int32(len(*edges))+1, to, from, costSec, distKm, roadClass),
		)
	}
}

func (p *Parser) internNode(osmID int64, coord nodeCoord, nodes *[]datastructure.Node) int32 {
	if id, ok := p.nodeIDMap[osmID]; ok {
		return id
	}
	id := int32(len(*nodes))
	p.nodeIDMap[osmID] = id
	*nodes = append(*nodes, datastructure.NewNode(id, coord.lat, coord.lon))
	return id
}
