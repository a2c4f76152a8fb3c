// Package profile generates the per-variant routing-profile scripts consumed
// by the external compiler's first stage alongside the graph document.
//
// Generation is a pure function of (vehicle-class base, modifier flags): no
// data access, fully testable by fixture comparison.
package profile

import (
	"fmt"
	"strings"
)

// roadClasses fixes the emission order of the per-class speed table so that
// generated scripts are byte-stable.
var roadClasses = []string{
	"motorway", "trunk", "primary", "secondary", "tertiary",
	"residential", "service", "track", "unclassified",
}

// nominalSpeeds holds the km/h assigned per road class for each vehicle
// class. Posted limits override these downward at query time.
var nominalSpeeds = map[VehicleClass]map[string]int{
	VehicleMotorcycle: {
		"motorway": 90, "trunk": 80, "primary": 65, "secondary": 55,
		"tertiary": 45, "residential": 30, "service": 20, "track": 15,
		"unclassified": 25,
	},
	VehicleVan: {
		"motorway": 90, "trunk": 75, "primary": 60, "secondary": 50,
		"tertiary": 40, "residential": 25, "service": 15, "track": 10,
		"unclassified": 20,
	},
}

// Turn penalties in seconds, applied near u-turns and sharp turns.
var turnPenalties = map[VehicleClass]struct{ UTurn, Sharp int }{
	VehicleMotorcycle: {UTurn: 15, Sharp: 5},
	VehicleVan:        {UTurn: 25, Sharp: 8},
}

// Generate produces the variant's self-contained profile script.
//
// The script assigns nominal speed by road class, overrides with the posted
// limit when lower, scales speed by trafficFactor/5.0 when traffic is
// enabled, scales path cost by (2.0 − ratingFactor) when rating is enabled
// and a rating is present, honors the graph's oneway tag, and applies fixed
// turn-cost penalties.
func Generate(v Variant) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}

	speeds := nominalSpeeds[v.Vehicle]
	penalties := turnPenalties[v.Vehicle]

	var b strings.Builder
	fmt.Fprintf(&b, "-- Profile %s\n", v.Name())
	b.WriteString("-- Generated for the routing-graph pipeline; do not edit by hand.\n\n")
	b.WriteString("api_version = 4\n\n")

	b.WriteString("local class_speeds = {\n")
	for _, class := range roadClasses {
		fmt.Fprintf(&b, "  [\"%s\"] = %d,\n", class, speeds[class])
	}
	b.WriteString("}\n\n")

	b.WriteString(`function setup()
  return {
    properties = {
      max_speed_for_map_matching = 120 / 3.6,
      weight_name = "routability",
      process_call_tagless_node = false,
      uturn_penalty = ` + fmt.Sprintf("%d", penalties.UTurn) + `,
    },
    default_speed = 10,
  }
end

function process_node(profile, node, result)
end

`)

	b.WriteString(`function process_way(profile, way, result)
  local highway = way:get_value_by_key("highway")
  if not highway then
    return
  end

  local speed = class_speeds[highway]
  if not speed then
    speed = profile.default_speed
  end

  local maxspeed = tonumber(way:get_value_by_key("maxspeed"))
  if maxspeed and maxspeed < speed then
    speed = maxspeed
  end
`)

	if v.TrafficEnabled {
		b.WriteString(`
  local traffic = tonumber(way:get_value_by_key("traffic_value"))
  if traffic then
    speed = speed * (traffic / 5.0)
  end
  if speed <= 0 then
    return
  end
`)
	}

	b.WriteString(`
  result.forward_speed = speed
  result.backward_speed = speed
  result.forward_mode = mode.driving
  result.backward_mode = mode.driving

  local rate = speed / 3.6
`)

	if v.RatingEnabled {
		b.WriteString(`
  local rating = tonumber(way:get_value_by_key("user_rating"))
  if rating then
    rate = rate / (2.0 - rating)
  end
`)
	}

	b.WriteString(`
  result.forward_rate = rate
  result.backward_rate = rate

  local oneway = way:get_value_by_key("oneway")
  if oneway == "yes" then
    result.backward_mode = mode.inaccessible
  end

  local name = way:get_value_by_key("name")
  if name then
    result.name = name
  end
end

`)

	fmt.Fprintf(&b, `function process_turn(profile, turn)
  if turn.is_u_turn then
    turn.duration = turn.duration + %d
    turn.weight = turn.weight + %d
  elseif math.abs(turn.angle) > 120 then
    turn.duration = turn.duration + %d
    turn.weight = turn.weight + %d
  end
end

return {
  setup = setup,
  process_way = process_way,
  process_node = process_node,
  process_turn = process_turn,
}
`, penalties.UTurn, penalties.UTurn, penalties.Sharp, penalties.Sharp)

	return b.String(), nil
}
