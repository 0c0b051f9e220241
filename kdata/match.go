package kdata

// Producer exposes the declared output type of a processing unit.
type Producer interface {
	OutputDataType() DataType
}

// MultiProducer is implemented by producers whose OutputDataType returns
// MultipleOutputTypes.
type MultiProducer interface {
	OutputDataTypes() []DataType
}

// Consumer exposes the declared input types of a processing unit.
type Consumer interface {
	InputDataTypes() []DataType
}

// OutputTypes resolves the output types of a producer, following the
// multi-type path when the producer declares MultipleOutputTypes.
func OutputTypes(p Producer) []DataType {
	dt := p.OutputDataType()
	if dt != MultipleOutputTypes {
		return []DataType{dt}
	}
	mp, ok := p.(MultiProducer)
	if !ok {
		return nil
	}
	return mp.OutputDataTypes()
}

// FindMatchingTypes returns, in producer order, the output types of producer
// that may flow into consumer. AllDataTypes always matches, every other type
// must appear verbatim in the consumer's input list.
func FindMatchingTypes(producer Producer, consumer Consumer) []DataType {
	inputs := consumer.InputDataTypes()

	var result []DataType
	for _, out := range OutputTypes(producer) {
		if out == AllDataTypes {
			result = append(result, out)
			continue
		}
		for _, in := range inputs {
			if in == out {
				result = append(result, out)
				break
			}
		}
	}
	return result
}
