package bpmn

import "github.com/matzehuels/flowlane/pkg/process"

// ElementName returns the BPMN element for a node's kind and subtype.
// Unknown subtypes map to the generic element of their kind.
func ElementName(kind process.Kind, subtype string) string {
	switch kind {
	case process.KindEvent:
		switch subtype {
		case process.SubtypeStart:
			return "startEvent"
		case process.SubtypeEnd:
			return "endEvent"
		case process.SubtypeIntermediateCatch:
			return "intermediateCatchEvent"
		default:
			return "intermediateThrowEvent"
		}
	case process.KindGateway:
		switch subtype {
		case process.SubtypeParallel:
			return "parallelGateway"
		case process.SubtypeInclusive:
			return "inclusiveGateway"
		case process.SubtypeEventBased:
			return "eventBasedGateway"
		case process.SubtypeComplex:
			return "complexGateway"
		default:
			return "exclusiveGateway"
		}
	default:
		switch subtype {
		case process.SubtypeUser:
			return "userTask"
		case process.SubtypeService:
			return "serviceTask"
		case process.SubtypeManual:
			return "manualTask"
		case process.SubtypeScript:
			return "scriptTask"
		case process.SubtypeSend:
			return "sendTask"
		case process.SubtypeReceive:
			return "receiveTask"
		case process.SubtypeBusinessRule:
			return "businessRuleTask"
		case process.SubtypeSubprocess:
			return "subProcess"
		case process.SubtypeCallActivity:
			return "callActivity"
		default:
			return "task"
		}
	}
}

// idPrefix follows the bpmn-js naming convention for generated ids.
func idPrefix(kind process.Kind) string {
	switch kind {
	case process.KindEvent:
		return "Event_"
	case process.KindGateway:
		return "Gateway_"
	default:
		return "Activity_"
	}
}

// carriesExpression reports whether flows leaving this gateway get a
// conditionExpression in addition to their name.
func carriesExpression(element string) bool {
	switch element {
	case "exclusiveGateway", "inclusiveGateway", "complexGateway":
		return true
	}
	return false
}
